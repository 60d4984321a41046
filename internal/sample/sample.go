// Package sample generates mixed right-to-left text files with pipe tables,
// sized for load testing the converter.
package sample

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alnah/go-txt2pdf/internal/fileutil"
)

// ErrInvalidSize is returned for a non-positive target size.
var ErrInvalidSize = errors.New("sample size must be > 0")

// Lines is the repeated block: Persian paragraphs, a 3-column table with a
// separator row, a blank line and a trailing paragraph.
var Lines = []string{
	"این یک متن تستی است برای بررسی عملکرد برنامه تبدیل متن به PDF.",
	"سیستم باید بتواند فایل‌های بزرگ را با سرعت بالا پردازش کند.",
	"این خط شامل متن طولانی‌تری است که برای تست شکل‌دهی متن RTL استفاده می‌شود.",
	"| ستون 1 | ستون 2 | ستون 3 |",
	"| --- | --- | --- |",
	"| داده 1 | داده 2 | داده 3 |",
	"| ردیف بعدی | اطلاعات | مقادیر |",
	"",
	"پاراگراف جدید پس از جدول با محتوای بیشتر برای تست.",
}

// Generate writes whole lines from Lines to w, cycling, until at least
// size bytes are written. It returns the byte count.
func Generate(w io.Writer, size int64) (int64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	var written int64
	for written < size {
		for _, line := range Lines {
			n, err := io.WriteString(w, line+"\n")
			written += int64(n)
			if err != nil {
				return written, err
			}
			if written >= size {
				break
			}
		}
	}
	return written, nil
}

// Write creates dir/name with roughly size bytes of sample text and returns
// its path. The file is written atomically.
func Write(dir, name string, size int64) (string, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := Generate(w, size)
		return err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
