package devtools

import "time"

// Tab describes one page exposed by the browser debugging endpoint.
type Tab struct {
	// ID is the browser-assigned target identifier.
	ID string `json:"id"`

	// URL is the page URL currently loaded in the tab.
	URL string `json:"url"`

	// DebugSocketURL is the WebSocket address of the tab's debugger.
	DebugSocketURL string `json:"webSocketDebuggerUrl"`
}

// ConsoleEvent is one console message observed on a tab.
type ConsoleEvent struct {
	// Text is the message payload as emitted by the page.
	Text string

	// ReceivedAt is when the client read the message off the connection.
	ReceivedAt time.Time
}

// command is an outgoing debugging protocol request.
type command struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
}

// envelope is an incoming debugging protocol frame; only the fields needed
// for console observation are decoded.
type envelope struct {
	Method string `json:"method"`
	Params struct {
		Message struct {
			Text string `json:"text"`
		} `json:"message"`
	} `json:"params"`
}
