package game

// Status is where a room is in its lifecycle
type Status string

const (
	Waiting  Status = "waiting"
	Playing  Status = "playing"
	Finished Status = "finished"
)

// Phase is where the current turn is
type Phase string

const (
	AwaitingRoll Phase = "awaitingRoll"
	AwaitingMove Phase = "awaitingMove"
)
