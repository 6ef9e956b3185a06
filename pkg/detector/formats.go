package detector

import "regexp"

// Signature is a kind of NCCL/RCCL debug output recognizable on one line.
type Signature struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for display
	Subsystem  string         // NCCL_DEBUG_SUBSYS value that enables it
	Required   bool           // True if script generation needs it
	Examples   []string
}

// Signature names referenced by the detector.
const (
	SigCollective = "Collective call record"
	SigMSCCL      = "MSCCL variant call"
	SigNCCLBanner = "NCCL version banner"
	SigRCCLBanner = "RCCL version banner"
	SigCommInit   = "Communicator init"
	SigChannel    = "Channel setup"
	SigWarn       = "NCCL warning"
)

// DefaultSignatures returns the built-in signatures. The first capture
// group of a banner pattern is the library version.
func DefaultSignatures() []*Signature {
	sigs := []*Signature{
		{
			Name:       SigCollective,
			PatternStr: `NCCL INFO \w+: opCount \w+ sendbuff `,
			Subsystem:  "COLL",
			Required:   true,
			Examples:   []string{"host:1:2 [0] NCCL INFO AllReduce: opCount 0 sendbuff 0x7f recvbuff 0x7f count 1024 datatype 7 op 0 root 0 comm 0x55 [nranks=8] stream 0x56 task 0 globalrank 0"},
		},
		{
			Name:       SigMSCCL,
			PatternStr: `NCCL INFO mscclFunc\w+: opCount `,
			Subsystem:  "COLL",
			Examples:   []string{"host:1:2 [0] NCCL INFO mscclFuncAllReduce: opCount 0 sendbuff 0x7f ..."},
		},
		{
			Name:       SigNCCLBanner,
			PatternStr: `NCCL INFO NCCL version (\S+)`,
			Subsystem:  "INIT",
			Examples:   []string{"host:1:1 [0] NCCL INFO NCCL version 2.18.3+cuda12.2"},
		},
		{
			Name:       SigRCCLBanner,
			PatternStr: `NCCL INFO RCCL version[ :]+(\S+)`,
			Subsystem:  "INIT",
			Examples:   []string{"host:1:1 [0] NCCL INFO RCCL version 2.18.3+hip6.0"},
		},
		{
			Name:       SigCommInit,
			PatternStr: `NCCL INFO comm \w+ rank \d+ nranks \d+`,
			Subsystem:  "INIT",
			Examples:   []string{"host:1:3 [0] NCCL INFO comm 0x55 rank 0 nranks 8 cudaDev 0 busId 1000 - Init COMPLETE"},
		},
		{
			Name:       SigChannel,
			PatternStr: `NCCL INFO Channel \d+/\d+`,
			Subsystem:  "INIT",
			Examples:   []string{"host:1:3 [0] NCCL INFO Channel 00/02 :    0   1   2   3"},
		},
		{
			Name:       SigWarn,
			PatternStr: `NCCL WARN `,
			Examples:   []string{"host:1:3 [0] NCCL WARN Cuda failure 'out of memory'"},
		},
	}

	for _, s := range sigs {
		s.Pattern = regexp.MustCompile(s.PatternStr)
	}

	return sigs
}
