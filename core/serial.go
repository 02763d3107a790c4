package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-composed MUS serializers for the domain types. The layout is flat
// field-by-field in declaration order; variable-length collections carry a
// varint length prefix. Changing a struct here requires bumping the stored
// format in lockstep, so fields are only ever appended.

// IDMUS serializes IDs.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// timeMUS serializes timestamps as Unix microseconds. The zero time maps to
// zero microseconds and back.
type timeMUS struct{}

var timestampMUS = timeMUS{}

func (timeMUS) Marshal(v time.Time, bs []byte) int {
	var micro int64
	if !v.IsZero() {
		micro = v.UnixMicro()
	}
	return varint.Int64.Marshal(micro, bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micro == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) int {
	var micro int64
	if !v.IsZero() {
		micro = v.UnixMicro()
	}
	return varint.Int64.Size(micro)
}

// float32MUS serializes a float32 via its IEEE-754 bits.
type float32MUS struct{}

var floatMUS = float32MUS{}

func (float32MUS) Marshal(v float32, bs []byte) int {
	return varint.Uint32.Marshal(math.Float32bits(v), bs)
}

func (float32MUS) Unmarshal(bs []byte) (float32, int, error) {
	bits, n, err := varint.Uint32.Unmarshal(bs)
	return math.Float32frombits(bits), n, err
}

func (float32MUS) Size(v float32) int {
	return varint.Uint32.Size(math.Float32bits(v))
}

// vectorMUS serializes an embedding vector with a length prefix.
type vectorMUS struct{}

var embeddingMUS = vectorMUS{}

func (vectorMUS) Marshal(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += floatMUS.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	// Every element costs at least one byte, so a prefix larger than the
	// remaining data is corruption, not a short read.
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrCorruptRecord
	}
	v := make([]float32, length)
	for i := 0; i < length; i++ {
		f, m, err := floatMUS.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = f
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += floatMUS.Size(f)
	}
	return size
}

// TopicRequestMUS serializes TopicRequest values.
var TopicRequestMUS = topicRequestMUS{}

type topicRequestMUS struct{}

func (topicRequestMUS) Marshal(v TopicRequest, bs []byte) (n int) {
	n = ord.String.Marshal(v.Topic, bs)
	n += varint.Int.Marshal(v.DurationSeconds, bs[n:])
	n += varint.Int.Marshal(v.MinScenes, bs[n:])
	n += varint.Int.Marshal(v.QuizCount, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	return n
}

func (topicRequestMUS) Unmarshal(bs []byte) (v TopicRequest, n int, err error) {
	var m int
	if v.Topic, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.DurationSeconds, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.MinScenes, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.QuizCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Language, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (topicRequestMUS) Size(v TopicRequest) int {
	return ord.String.Size(v.Topic) +
		varint.Int.Size(v.DurationSeconds) +
		varint.Int.Size(v.MinScenes) +
		varint.Int.Size(v.QuizCount) +
		ord.String.Size(v.Language)
}

// SceneMUS serializes Scene values.
var SceneMUS = sceneMUS{}

type sceneMUS struct{}

func (sceneMUS) Marshal(v Scene, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Scene, bs)
	n += ord.String.Marshal(v.Time, bs[n:])
	n += ord.String.Marshal(v.Visuals, bs[n:])
	n += ord.String.Marshal(v.Narration, bs[n:])
	return n
}

func (sceneMUS) Unmarshal(bs []byte) (v Scene, n int, err error) {
	var m int
	if v.Scene, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if v.Time, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Visuals, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Narration, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (sceneMUS) Size(v Scene) int {
	return varint.Int.Size(v.Scene) +
		ord.String.Size(v.Time) +
		ord.String.Size(v.Visuals) +
		ord.String.Size(v.Narration)
}

// MusicMUS serializes Music values.
var MusicMUS = musicMUS{}

type musicMUS struct{}

func (musicMUS) Marshal(v Music, bs []byte) (n int) {
	n = ord.String.Marshal(v.Style, bs)
	n += ord.String.Marshal(v.Tempo, bs[n:])
	n += ord.String.Marshal(v.Mood, bs[n:])
	return n
}

func (musicMUS) Unmarshal(bs []byte) (v Music, n int, err error) {
	var m int
	if v.Style, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Tempo, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Mood, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (musicMUS) Size(v Music) int {
	return ord.String.Size(v.Style) +
		ord.String.Size(v.Tempo) +
		ord.String.Size(v.Mood)
}

// QuizItemMUS serializes QuizItem values, answers with a length prefix.
var QuizItemMUS = quizItemMUS{}

type quizItemMUS struct{}

func (quizItemMUS) Marshal(v QuizItem, bs []byte) (n int) {
	n = ord.String.Marshal(v.Question, bs)
	n += varint.Int.Marshal(len(v.Answers), bs[n:])
	for _, a := range v.Answers {
		n += ord.String.Marshal(a.Text, bs[n:])
		n += ord.Bool.Marshal(a.Correct, bs[n:])
	}
	return n
}

func (quizItemMUS) Unmarshal(bs []byte) (v QuizItem, n int, err error) {
	var m int
	if v.Question, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	length, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if length < 0 || length > len(bs)-n {
		return v, n, ErrCorruptRecord
	}
	for i := 0; i < length; i++ {
		var a QuizAnswer
		if a.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		if a.Correct, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Answers = append(v.Answers, a)
	}
	return v, n, nil
}

func (quizItemMUS) Size(v QuizItem) int {
	size := ord.String.Size(v.Question) + varint.Int.Size(len(v.Answers))
	for _, a := range v.Answers {
		size += ord.String.Size(a.Text) + ord.Bool.Size(a.Correct)
	}
	return size
}

// CourseDocumentMUS serializes CourseDocument values.
var CourseDocumentMUS = courseDocumentMUS{}

type courseDocumentMUS struct{}

func (courseDocumentMUS) Marshal(v CourseDocument, bs []byte) (n int) {
	n = ord.String.Marshal(v.Title, bs)
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.BodyHTML, bs[n:])
	n += varint.Int.Marshal(len(v.Scenes), bs[n:])
	for _, s := range v.Scenes {
		n += SceneMUS.Marshal(s, bs[n:])
	}
	n += MusicMUS.Marshal(v.Music, bs[n:])
	n += varint.Int.Marshal(len(v.Quiz), bs[n:])
	for _, q := range v.Quiz {
		n += QuizItemMUS.Marshal(q, bs[n:])
	}
	n += ord.String.Marshal(v.Keywords, bs[n:])
	return n
}

func (courseDocumentMUS) Unmarshal(bs []byte) (v CourseDocument, n int, err error) {
	var m int
	if v.Title, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Description, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.BodyHTML, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m

	sceneCount, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if sceneCount < 0 || sceneCount > len(bs)-n {
		return v, n, ErrCorruptRecord
	}
	for i := 0; i < sceneCount; i++ {
		var s Scene
		if s, m, err = SceneMUS.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Scenes = append(v.Scenes, s)
	}

	if v.Music, m, err = MusicMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m

	quizCount, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if quizCount < 0 || quizCount > len(bs)-n {
		return v, n, ErrCorruptRecord
	}
	for i := 0; i < quizCount; i++ {
		var q QuizItem
		if q, m, err = QuizItemMUS.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Quiz = append(v.Quiz, q)
	}

	if v.Keywords, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (courseDocumentMUS) Size(v CourseDocument) int {
	size := ord.String.Size(v.Title) +
		ord.String.Size(v.Description) +
		ord.String.Size(v.BodyHTML) +
		varint.Int.Size(len(v.Scenes))
	for _, s := range v.Scenes {
		size += SceneMUS.Size(s)
	}
	size += MusicMUS.Size(v.Music) + varint.Int.Size(len(v.Quiz))
	for _, q := range v.Quiz {
		size += QuizItemMUS.Size(q)
	}
	return size + ord.String.Size(v.Keywords)
}

// CourseMUS serializes Course values. The optional topic request and the
// optional generated document are each prefixed with a presence flag.
var CourseMUS = courseMUS{}

type courseMUS struct{}

func (courseMUS) Marshal(v Course, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.Bool.Marshal(v.Request != nil, bs[n:])
	if v.Request != nil {
		n += TopicRequestMUS.Marshal(*v.Request, bs[n:])
	}
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Description, bs[n:])
	n += ord.String.Marshal(v.BodyHTML, bs[n:])
	n += ord.Bool.Marshal(v.Document != nil, bs[n:])
	if v.Document != nil {
		n += CourseDocumentMUS.Marshal(*v.Document, bs[n:])
	}
	n += ord.String.Marshal(v.RawDocumentRef, bs[n:])
	n += ord.String.Marshal(v.RawDocumentText, bs[n:])
	n += ord.String.Marshal(v.MediaRef, bs[n:])
	n += ord.String.Marshal(v.MediaText, bs[n:])
	n += varint.Float64.Marshal(v.MediaDurationSeconds, bs[n:])
	n += ord.String.Marshal(v.Keywords, bs[n:])
	n += ord.String.Marshal(v.VectorIndexRef, bs[n:])
	n += timestampMUS.Marshal(v.InsertedAt, bs[n:])
	n += timestampMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (courseMUS) Unmarshal(bs []byte) (v Course, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	hasRequest, m, err := ord.Bool.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if hasRequest {
		var req TopicRequest
		if req, m, err = TopicRequestMUS.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Request = &req
	}

	for _, dst := range []*string{&v.Title, &v.Description, &v.BodyHTML} {
		if *dst, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
	}

	hasDocument, m, err := ord.Bool.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return v, n, err
	}
	if hasDocument {
		var doc CourseDocument
		if doc, m, err = CourseDocumentMUS.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Document = &doc
	}

	strs := []*string{
		&v.RawDocumentRef, &v.RawDocumentText,
		&v.MediaRef, &v.MediaText,
	}
	for _, dst := range strs {
		if *dst, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
	}

	if v.MediaDurationSeconds, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Keywords, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.VectorIndexRef, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.UpdatedAt, m, err = timestampMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (courseMUS) Size(v Course) int {
	size := IDMUS.Size(v.Id) + ord.Bool.Size(v.Request != nil)
	if v.Request != nil {
		size += TopicRequestMUS.Size(*v.Request)
	}
	size += ord.Bool.Size(v.Document != nil)
	if v.Document != nil {
		size += CourseDocumentMUS.Size(*v.Document)
	}
	size += ord.String.Size(v.Title) +
		ord.String.Size(v.Description) +
		ord.String.Size(v.BodyHTML) +
		ord.String.Size(v.RawDocumentRef) +
		ord.String.Size(v.RawDocumentText) +
		ord.String.Size(v.MediaRef) +
		ord.String.Size(v.MediaText) +
		varint.Float64.Size(v.MediaDurationSeconds) +
		ord.String.Size(v.Keywords) +
		ord.String.Size(v.VectorIndexRef) +
		timestampMUS.Size(v.InsertedAt) +
		timestampMUS.Size(v.UpdatedAt)
	return size
}

// VectorChunkMUS serializes VectorChunk values.
var VectorChunkMUS = vectorChunkMUS{}

type vectorChunkMUS struct{}

func (vectorChunkMUS) Marshal(v VectorChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.CourseId, bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += embeddingMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (vectorChunkMUS) Unmarshal(bs []byte) (v VectorChunk, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.CourseId, m, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Seq, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Vector, m, err = embeddingMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (vectorChunkMUS) Size(v VectorChunk) int {
	return IDMUS.Size(v.Id) +
		IDMUS.Size(v.CourseId) +
		varint.Int.Size(v.Seq) +
		ord.String.Size(v.Text) +
		embeddingMUS.Size(v.Vector)
}
