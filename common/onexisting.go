package common

//go:generate go run github.com/dmarkham/enumer -json -type OnExisting -trimprefix OnExisting

// OnExisting defines what to do with a stage whose output already exists
type OnExisting int

const (
	OnExistingPrompt    OnExisting = iota // Ask the operator (default answer: skip)
	OnExistingSkip                        // Keep the existing output
	OnExistingOverwrite                   // Run the stage again
)

// Set implements flag.Value
func (i *OnExisting) Set(s string) error {
	v, err := OnExistingString(s)
	if err != nil {
		return err
	}
	*i = v
	return nil
}
