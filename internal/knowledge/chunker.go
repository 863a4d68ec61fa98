package knowledge

// Chunk splits text into overlapping fixed-size windows. Each window is at
// most maxSize characters and shares overlap characters with its
// predecessor. The final window may be shorter. Empty input yields no
// chunks; input no longer than maxSize yields exactly one chunk.
//
// When overlap >= maxSize the naive offset update (end - overlap) would
// stall or move backwards, so the next window starts at the current end
// instead. The whole input is always covered either way.
func Chunk(text string, maxSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		return []string{text}
	}
	if overlap < 0 {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
