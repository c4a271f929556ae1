package cliclaimer

type CmdResult struct{}

func (r CmdResult) GetOutput() string {
	return "claimer stopped"
}
