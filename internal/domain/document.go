package domain

// Document is the ordered block sequence for one editable page. Order is
// significant; the only uniqueness constraint is the block id.
type Document []Block

// CloneDocument deep-copies a document for snapshots.
func CloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for i, b := range doc {
		out[i] = b.Clone()
	}
	return out
}

// IndexOf returns the index of the block with the given id, or -1.
func (d Document) IndexOf(id string) int {
	for i, b := range d {
		if b.BlockID() == id {
			return i
		}
	}
	return -1
}
