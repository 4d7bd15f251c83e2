package tui

// operation names a controller action run by a command; it doubles as the
// wording of failure messages
type operation string

const (
	opBootstrap operation = "load chats"
	opCreate    operation = "start a new chat"
	opSelect    operation = "open chat"
	opSend      operation = "send message"
	opDelete    operation = "delete chat"
	opRename    operation = "rename chat"
)

// resultMsg reports that a controller action finished
type resultMsg struct {
	op  operation
	err error
}
