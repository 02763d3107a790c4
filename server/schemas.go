package server

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// StreamRequest is the chat endpoint's body: the conversation so far plus
// an optional course to ground the answer in.
type StreamRequest struct {
	CourseID    uint64          `json:"courseId"`
	MessageList []StreamMessage `json:"messageList"`
}

// StreamMessage is one entry of the conversation. An empty role means user.
type StreamMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// MediaChunkRequest is one slice of a chunked upload. Offset zero starts a
// new file, any other offset appends to it.
type MediaChunkRequest struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Data   []byte `json:"data"`
}

// MediaChunkResponse reports where the uploaded file lives and how large it
// has grown.
type MediaChunkResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}
