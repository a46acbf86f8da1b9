package memory

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/pbrain/word"
)

// Image is a parsed program file.
type Image struct {
	MemRequired int         // Words of memory the program asks for.
	Words       []word.Word // Words loaded at the base of the window.
}

// leadingNumber returns the leading signed decimal number of a line.
func leadingNumber(line string) (value int, ok bool) {
	line = strings.TrimLeft(line, " \t")

	end := 0
	if end < len(line) && (line[end] == '-' || line[end] == '+') {
		end++
	}
	start := end
	for end < len(line) && line[end] >= '0' && line[end] <= '9' {
		end++
	}
	if end == start {
		return
	}

	value, err := strconv.Atoi(line[:end])
	ok = err == nil
	return
}

// ParseImage reads a program file.
//
// The leading digits of the first line are the memory requirement. Every
// later line of at least six characters is one word, read from its first
// six characters; shorter lines are skipped.
func ParseImage(input io.Reader) (img *Image, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineno++

		if lineno == 1 {
			var ok bool
			img = &Image{}
			img.MemRequired, ok = leadingNumber(line)
			if !ok {
				img = nil
				err = &ErrImageLine{LineNo: lineno, Err: ErrProgramHeader}
				return
			}
			continue
		}

		w, ok := word.Parse(line)
		if !ok {
			continue
		}
		img.Words = append(img.Words, w)
	}

	err = scanner.Err()
	if err != nil {
		img = nil
		return
	}

	if img == nil {
		err = &ErrImageLine{LineNo: 1, Err: ErrProgramHeader}
		return
	}

	return
}

// WriteTo writes the image in program file format.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	var count int
	count, err = fmt.Fprintf(w, "%d\n", img.MemRequired)
	n += int64(count)
	if err != nil {
		return
	}

	for _, code := range img.Words {
		count, err = fmt.Fprintf(w, "%v\n", code.String())
		n += int64(count)
		if err != nil {
			return
		}
	}

	return
}
