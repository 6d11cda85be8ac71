package indexer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadSlots parses one slot per line. Blank lines and lines starting with
// '#' are ignored; duplicates are kept once, in first-seen order.
func ReadSlots(r io.Reader) ([]uint64, error) {
	var slots []uint64
	seen := make(map[uint64]bool)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		slot, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid slot %q", line, text)
		}
		if seen[slot] {
			continue
		}
		seen[slot] = true
		slots = append(slots, slot)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func ReadSlotsFile(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSlots(f)
}
