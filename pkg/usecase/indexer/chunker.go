package indexer

import (
	"fmt"
	"strconv"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
)

// ChunkDocuments splits documents whose content exceeds chunkSize into
// overlapping chunks that inherit the parent metadata plus chunk position
// fields. Short documents pass through untouched.
func ChunkDocuments(docs []*Document, chunkSize int) []*Document {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	overlap := defaultChunkOverlap
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}

	out := make([]*Document, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Content) <= chunkSize {
			out = append(out, doc)
			continue
		}

		pieces := splitText(doc.Content, chunkSize, overlap)
		for i, piece := range pieces {
			metadata := make(map[string]string, len(doc.Metadata)+2)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata["chunk_index"] = strconv.Itoa(i)
			metadata["total_chunks"] = strconv.Itoa(len(pieces))

			out = append(out, &Document{
				ID:       fmt.Sprintf("%s_chunk%d", doc.ID, i),
				Content:  piece,
				Metadata: metadata,
			})
		}
	}

	return out
}

// splitText cuts text into windows of at most size bytes, preferring to
// break at a newline near the window end, with the given overlap between
// consecutive windows
func splitText(text string, size, overlap int) []string {
	var chunks []string
	for start := 0; start < len(text); {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		cut := end
		for i := end; i > start+size/2; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}

		chunks = append(chunks, text[start:cut])

		// The overlap rewind must never cancel out the window advance
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}
