// Package output serializes extraction documents to disk.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ekaya-inc/metadoc/pkg/apperrors"
)

// Write serializes document as indented UTF-8 JSON and overwrites path
// unconditionally. Failures wrap apperrors.ErrWriteFailed.
func Write(document any, path string) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", apperrors.ErrWriteFailed, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}
