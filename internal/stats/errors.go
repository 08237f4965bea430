package stats

import "fmt"

// ValueError indicates an argument outside its domain, such as a quantile
// outside (0,1) or statistics requested over an empty collection.
type ValueError struct {
	Step string
	Msg  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Msg)
}

func emptyInput(step string) error {
	return &ValueError{Step: step, Msg: "empty record set"}
}
