package core

// Stage identifies one unit of enrichment work. The stage a course needs is
// derived from its fields on every scheduler tick and is never stored, so the
// stored record cannot drift from the work actually remaining.
type Stage int

const (
	// StageNone means the course is fully enriched.
	StageNone Stage = iota
	// StageGeneration produces structured content from a topic request.
	StageGeneration
	// StageTranscription turns uploaded media into text.
	StageTranscription
	// StageIndexing builds the vector collection over the combined text.
	StageIndexing
)

// String returns the stage name used in logs.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageGeneration:
		return "generation"
	case StageTranscription:
		return "transcription"
	case StageIndexing:
		return "indexing"
	default:
		return "unknown"
	}
}

// NextStage decides which enrichment stage a course still needs. It is a pure
// function over the course fields:
//
//   - Generation applies while the topic request has a topic and no title has
//     been produced yet. A course with a title is never regenerated.
//   - Transcription applies while media is attached and no media text exists.
//   - Indexing applies while no vector collection has been built and there is
//     any text source: an attached raw document (read lazily by the stage),
//     already-extracted raw text, a transcript, or a generated body.
//
// Generation and transcription are mutually exclusive per course in practice
// (a course comes from a topic request or from uploaded media); generation
// wins if both somehow apply, since its output feeds indexing.
func NextStage(c *Course) Stage {
	if c == nil {
		return StageNone
	}
	if c.Request != nil && c.Request.Topic != "" && c.Title == "" {
		return StageGeneration
	}
	if c.MediaRef != "" && c.MediaText == "" {
		return StageTranscription
	}
	if c.VectorIndexRef == "" && (c.RawDocumentText != "" || c.RawDocumentRef != "" || c.MediaText != "" || c.BodyHTML != "") {
		return StageIndexing
	}
	return StageNone
}
