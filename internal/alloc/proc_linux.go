//go:build linux

package alloc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readHugepagesizeKB parses /proc/meminfo's "Hugepagesize:" line, which is
// reported in KiB.
func readHugepagesizeKB() (int64, error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Hugepagesize:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("malformed Hugepagesize line: %q", line)
		}
		return strconv.ParseInt(fields[1], 10, 64)
	}
	return 0, fmt.Errorf("Hugepagesize not found in /proc/meminfo")
}

// pagemapPFN reads the page-frame-number for the page containing the
// virtual address va from /proc/self/pagemap. Bit 63 of the 8-byte entry
// indicates the page is present; bits 0-54 hold the PFN.
func pagemapPFN(va uintptr, pageSize int64) (uint64, error) {
	f, err := os.Open("/proc/self/pagemap")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	const entrySize = 8
	offset := (int64(va) / pageSize) * entrySize
	buf := make([]byte, entrySize)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return 0, fmt.Errorf("read pagemap at offset %d: %w", offset, err)
	}
	var entry uint64
	for i := 0; i < entrySize; i++ {
		entry |= uint64(buf[i]) << (8 * i)
	}
	const presentBit = uint64(1) << 63
	if entry&presentBit == 0 {
		return 0, fmt.Errorf("page at %#x not present", va)
	}
	const pfnMask = (uint64(1) << 55) - 1
	return entry & pfnMask, nil
}
