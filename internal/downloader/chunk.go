package downloader

// Chunk is one contiguous, non-overlapping byte sub-range of a remote
// resource, downloaded independently of its siblings.
type Chunk struct {
	Index int
	Start int64 // inclusive
	End   int64 // exclusive
}

// Length returns the number of bytes covered by the chunk.
func (c Chunk) Length() int64 {
	return c.End - c.Start
}

// Plan partitions [0, fileSize) into chunkSize-sized chunks. The chunks
// tile the range exactly and disjointly; the last chunk may be short.
// A fileSize of zero yields no chunks.
func Plan(fileSize, chunkSize int64) []Chunk {
	if fileSize <= 0 || chunkSize <= 0 {
		return nil
	}

	numChunks := (fileSize + chunkSize - 1) / chunkSize
	chunks := make([]Chunk, 0, numChunks)
	for i := int64(0); i < numChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > fileSize {
			end = fileSize
		}
		chunks = append(chunks, Chunk{Index: int(i), Start: start, End: end})
	}
	return chunks
}
