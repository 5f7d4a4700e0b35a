package dupescan

// Default settings applied when neither config file, environment, nor
// command line says otherwise.
const (
	// DefaultChunkSize is the number of bytes read per I/O call and the
	// size of the prefix-phase sample.
	DefaultChunkSize = 64 * 1024

	// DefaultHashWorkers bounds concurrent file hashing within a phase.
	DefaultHashWorkers = 4

	// DefaultHashName is the hash algorithm used when none is configured.
	DefaultHashName = "sha256"

	// DefaultOutputFormat is the report format used when none is configured.
	DefaultOutputFormat = "human"
)

// Hash algorithm type IDs
const (
	HashTypeSHA1   uint16 = 1
	HashTypeSHA256 uint16 = 2
	HashTypeSHA512 uint16 = 3
)

// Hash digest sizes in bytes
const (
	HashSizeSHA1   = 20
	HashSizeSHA256 = 32
	HashSizeSHA512 = 64
)

// Output format names
const (
	OutputFormatHuman = "human"
	OutputFormatJSON  = "json"
)
