package chunked

import "github.com/gabriel-vasile/mimetype"

// DetectContentType sniffs a MIME type from the file's actual bytes rather
// than trusting its extension — the teacher's S3 content store takes the
// same stance when handling arbitrary user uploads.
func DetectContentType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}
