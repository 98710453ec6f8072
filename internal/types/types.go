package types

// Location is the pointer position reported after a move or click.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Command represents an incoming control-socket message.
type Command struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// CommandError is the outbound frame for a rejected control command.
type CommandError struct {
	Error string `json:"error"`
}
