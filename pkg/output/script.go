package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ccollicutt/ncclreplay/pkg/aggregate"
)

// CountsSeparator is the column separator of the counts file. The first
// line of the file declares it so spreadsheet tools split on it.
const CountsSeparator = "|"

const countsComma = '|'

// File name suffixes appended to the output base name.
const (
	ScriptSuffix       = ".sh"
	UniqueScriptSuffix = "_unique.sh"
	CountsSuffix       = "_counts.csv"
)

// WriteScript writes one command per line.
func WriteScript(w io.Writer, commands []string) error {
	bw := bufio.NewWriter(w)
	for _, cmd := range commands {
		if _, err := bw.WriteString(cmd + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCounts writes the separator declaration followed by one
// command|count row per unique command. A command holding the separator
// or a quote is quoted CSV-style.
func WriteCounts(w io.Writer, table *aggregate.Table) error {
	if _, err := io.WriteString(w, "sep="+CountsSeparator+"\n"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = countsComma
	for _, row := range table.Rows {
		if err := cw.Write([]string{row.Command, strconv.FormatInt(row.Count, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileWriter writes output files and prints a confirmation line for each.
type FileWriter struct {
	msgs io.Writer
}

// NewFileWriter creates a FileWriter that prints confirmations to msgs.
func NewFileWriter(msgs io.Writer) *FileWriter {
	if msgs == nil {
		msgs = io.Discard
	}
	return &FileWriter{msgs: msgs}
}

// Script writes commands to path.
func (fw *FileWriter) Script(path string, commands []string) error {
	var buf bytes.Buffer
	if err := WriteScript(&buf, commands); err != nil {
		return err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(fw.msgs, "INFO: Dumped out the commands in a script named: %s\n", path)
	return nil
}

// Counts writes the count table to path.
func (fw *FileWriter) Counts(path string, table *aggregate.Table) error {
	var buf bytes.Buffer
	if err := WriteCounts(&buf, table); err != nil {
		return err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(fw.msgs, "INFO: Dumped out the count of each command in a file named: %s\n", path)
	return nil
}

func writeFile(path string, data []byte) error {
	// #nosec G306 -- scripts are plain text; the user decides how to run them
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
