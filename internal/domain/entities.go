package domain

import "fmt"

// DocMeta describes the source file a piece of text came from.
type DocMeta struct {
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	SourcePath string `json:"source_path"`
	NumPages   int    `json:"num_pages,omitempty"`
}

// DocumentRecord is the canonical output of the document parser: clean text
// plus source metadata. Records are immutable once created.
type DocumentRecord struct {
	Text       string
	Meta       DocMeta
	RawContent string
}

// ChunkMeta carries the document metadata plus the chunk's position within
// the source text.
type ChunkMeta struct {
	DocMeta
	ChunkIndex  int `json:"chunk_index"`
	StartPos    int `json:"start_pos"`
	EndPos      int `json:"end_pos"`
	TotalChunks int `json:"total_chunks"`
}

// Chunk is a bounded, position-tracked slice of a parsed document's text.
type Chunk struct {
	Text string
	Meta ChunkMeta
}

// ID returns the stable index key for the chunk. Re-adding a chunk with the
// same filename and index is a no-op in every index strategy.
func (c Chunk) ID() string {
	name := c.Meta.Filename
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("%s_%d", name, c.Meta.ChunkIndex)
}

// SearchResult is one retrieved chunk with its strategy-defined score.
type SearchResult struct {
	ID    string    `json:"id"`
	Text  string    `json:"text"`
	Meta  ChunkMeta `json:"metadata"`
	Score float64   `json:"similarity_score"`
}

// IndexStats summarises the contents of a collection.
type IndexStats struct {
	TotalChunks     int      `json:"total_chunks"`
	FileTypes       []string `json:"file_types"`
	SampleFilenames []string `json:"sample_filenames"`
	CollectionName  string   `json:"collection_name"`
	Strategy        string   `json:"strategy"`
}

// SourcedText is a piece of retrieved text tagged with the filename it was
// drawn from.
type SourcedText struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// GroundedInfo groups retrieved chunks into typed signal categories. The
// categories are non-exclusive: one chunk may appear in several.
type GroundedInfo struct {
	Features      []SourcedText `json:"features"`
	BusinessRules []SourcedText `json:"business_rules"`
	UIElements    []SourcedText `json:"ui_elements"`
	Workflows     []SourcedText `json:"workflows"`
	Validations   []SourcedText `json:"validations"`
	Sources       []string      `json:"sources"`
}

// NotSpecified is the sentinel cited when no retrieved source supports a
// generated test case. It is the only legal value of Grounded_In besides an
// actual source filename.
const NotSpecified = "NOT SPECIFIED"

// TestCase is a structured, source-attributed test case description.
type TestCase struct {
	TestID         string   `json:"Test_ID"`
	Feature        string   `json:"Feature"`
	TestScenario   string   `json:"Test_Scenario"`
	Steps          []string `json:"Steps"`
	ExpectedResult string   `json:"Expected_Result"`
	GroundedIn     string   `json:"Grounded_In"`
	Type           string   `json:"Type"`
	Notes          string   `json:"Notes"`
}

// Test case types.
const (
	TypePositive = "Positive"
	TypeNegative = "Negative"
)

// ScriptArtifact is a generated automation script plus the filename it should
// be saved under.
type ScriptArtifact struct {
	Source   string `json:"script"`
	Filename string `json:"filename"`
}
