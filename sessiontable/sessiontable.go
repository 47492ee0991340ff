// Package sessiontable implements the "session"/"track" section:
// acquisition session and audio-track boundaries, reconstructed into two
// parallel sectorrange.Lists (spec.md §4.9).
package sessiontable

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/sectorrange"
)

const (
	headerSizeV1 = 208 // number_of_entries[4], unknown[200], checksum[4]
	headerSizeV2 = 32  // number_of_entries[4], unknown[12], checksum[4], padding[12]

	entrySizeV1 = 32 // unknown[4], first_sector[4], unknown[24]
	entrySizeV2 = 32 // start_sector[8], flags[4], unknown[20]

	footerSizeV1 = 4
	footerSizeV2 = 16

	// flagAudioTrack is v2's bit distinguishing an audio track boundary
	// from a data session boundary.
	flagAudioTrack uint32 = 0x1
)

// rawEntry is the version-independent decode of one session/track entry:
// a boundary sector and whether it opens an audio track.
type rawEntry struct {
	sector uint64
	audio  bool
}

func readEntriesV1(buf []byte, n int) []rawEntry {
	entries := make([]rawEntry, n)
	for i := 0; i < n; i++ {
		e := buf[i*entrySizeV1 : (i+1)*entrySizeV1]
		entries[i] = rawEntry{sector: uint64(binary.LittleEndian.Uint32(e[4:8]))}
	}
	return entries
}

func readEntriesV2(buf []byte, n int) []rawEntry {
	entries := make([]rawEntry, n)
	for i := 0; i < n; i++ {
		e := buf[i*entrySizeV2 : (i+1)*entrySizeV2]
		flags := binary.LittleEndian.Uint32(e[8:12])
		entries[i] = rawEntry{
			sector: binary.LittleEndian.Uint64(e[0:8]),
			audio:  flags&flagAudioTrack != 0,
		}
	}
	return entries
}

// reconstruct implements spec.md §4.9's reconstruction algorithm: the
// first entry anchors session 0 at previousStartSector and never itself
// closes or opens a range (it exists only as a seed/bounds-check entry,
// per original_source/libewf/libewf_session_section.c's loop starting at
// session_entry_index = 1); each subsequent entry closes the open range
// at its sector and opens the next one. Entries flagged audio close/open
// the tracks list instead of sessions.
func reconstruct(entries []rawEntry, previousStartSector uint64) (sessions, tracks sectorrange.List) {
	if len(entries) == 0 {
		return sessions, tracks
	}

	sessionStart := previousStartSector
	trackStart := previousStartSector

	for _, e := range entries[1:] {
		if e.audio {
			tracks.Append(sectorrange.Range{Start: trackStart, Count: e.sector - trackStart})
			trackStart = e.sector
			continue
		}
		sessions.Append(sectorrange.Range{Start: sessionStart, Count: e.sector - sessionStart})
		sessionStart = e.sector
	}

	return sessions, tracks
}

// ReadV1 parses a v1 session/track section payload into sessions and
// tracks, replacing their prior contents. previousStartSector anchors the
// first reconstructed range (spec.md §4.9 tolerates either the strict 0
// or EnCase's conventional 16).
func ReadV1(buf []byte, previousStartSector uint64, sessions, tracks *sectorrange.List) error {
	if len(buf) < headerSizeV1 {
		return fmt.Errorf("%w: v1 session-table header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV1, len(buf))
	}
	numberOfEntries := int(binary.LittleEndian.Uint32(buf[0:4]))
	headerChecksum := binary.LittleEndian.Uint32(buf[204:208])
	if !checksum.Verify(buf[:204], headerChecksum) {
		return fmt.Errorf("%w: v1 session-table header", ewferr.ErrChecksumMismatch)
	}

	entriesStart := headerSizeV1
	entriesEnd := entriesStart + numberOfEntries*entrySizeV1
	if len(buf) < entriesEnd+footerSizeV1 {
		return fmt.Errorf("%w: v1 session-table entries/footer need %d bytes, got %d", ewferr.ErrOutOfBounds, entriesEnd+footerSizeV1, len(buf))
	}
	footer := binary.LittleEndian.Uint32(buf[entriesEnd : entriesEnd+4])
	if !checksum.Verify(buf[entriesStart:entriesEnd], footer) {
		return fmt.Errorf("%w: v1 session-table entries footer", ewferr.ErrChecksumMismatch)
	}

	entries := readEntriesV1(buf[entriesStart:entriesEnd], numberOfEntries)
	gotSessions, gotTracks := reconstruct(entries, previousStartSector)
	sessions.Reset()
	for _, r := range gotSessions.All() {
		sessions.Append(r)
	}
	tracks.Reset()
	for _, r := range gotTracks.All() {
		tracks.Append(r)
	}
	return nil
}

// ReadV2 parses a v2 session/track section payload.
func ReadV2(buf []byte, previousStartSector uint64, sessions, tracks *sectorrange.List) error {
	if len(buf) < headerSizeV2 {
		return fmt.Errorf("%w: v2 session-table header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV2, len(buf))
	}
	numberOfEntries := int(binary.LittleEndian.Uint32(buf[0:4]))
	headerChecksum := binary.LittleEndian.Uint32(buf[16:20])
	if !checksum.Verify(buf[:16], headerChecksum) {
		return fmt.Errorf("%w: v2 session-table header", ewferr.ErrChecksumMismatch)
	}

	entriesStart := headerSizeV2
	entriesEnd := entriesStart + numberOfEntries*entrySizeV2
	if len(buf) < entriesEnd+footerSizeV2 {
		return fmt.Errorf("%w: v2 session-table entries/footer need %d bytes, got %d", ewferr.ErrOutOfBounds, entriesEnd+footerSizeV2, len(buf))
	}
	footer := binary.LittleEndian.Uint32(buf[entriesEnd : entriesEnd+4])
	if !checksum.Verify(buf[entriesStart:entriesEnd], footer) {
		return fmt.Errorf("%w: v2 session-table entries footer", ewferr.ErrChecksumMismatch)
	}

	entries := readEntriesV2(buf[entriesStart:entriesEnd], numberOfEntries)
	gotSessions, gotTracks := reconstruct(entries, previousStartSector)
	sessions.Reset()
	for _, r := range gotSessions.All() {
		sessions.Append(r)
	}
	tracks.Reset()
	for _, r := range gotTracks.All() {
		tracks.Append(r)
	}
	return nil
}

// WriteV1 serializes sessions back into a v1 session/track section
// payload. v1's entry layout has no flags field to carry an audio bit, so
// unlike WriteV2 it cannot represent tracks; callers targeting v1 must
// keep track information out of band.
//
// The first entry never closes a range (reconstruct ignores it); it only
// seeds where session 0 begins, mirroring the on-disk convention. n
// sessions therefore need n+1 entries: one seed plus one closing entry
// per session boundary.
func WriteV1(sessions *sectorrange.List) []byte {
	n := sessions.Len()
	numberOfEntries := 0
	if n > 0 {
		numberOfEntries = n + 1
	}
	entriesSize := numberOfEntries * entrySizeV1
	buf := make([]byte, headerSizeV1+entriesSize+footerSizeV1)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(numberOfEntries))
	headerCksum := checksum.Sum(checksum.Seed, buf[:204])
	binary.LittleEndian.PutUint32(buf[204:208], headerCksum)

	entriesStart := headerSizeV1
	if n > 0 {
		first, _ := sessions.Get(0)
		seed := buf[entriesStart : entriesStart+entrySizeV1]
		binary.LittleEndian.PutUint32(seed[4:8], uint32(first.Start))

		for i := 0; i < n; i++ {
			r, _ := sessions.Get(i)
			e := buf[entriesStart+(i+1)*entrySizeV1 : entriesStart+(i+2)*entrySizeV1]
			binary.LittleEndian.PutUint32(e[4:8], uint32(r.End()))
		}
	}

	entriesEnd := entriesStart + entriesSize
	footer := checksum.Sum(checksum.Seed, buf[entriesStart:entriesEnd])
	binary.LittleEndian.PutUint32(buf[entriesEnd:entriesEnd+4], footer)

	return buf
}

// WriteV2 serializes sessions and tracks back into a v2 session/track
// section payload by walking both lists in parallel and emitting one
// entry per transition, in sector order, per spec.md §4.9's writer
// algorithm.
//
// As with WriteV1, the first raw entry never closes a range: it only
// seeds where session/track 0 begins, so len(sessions)+len(tracks)
// transitions need one extra leading entry.
func WriteV2(sessions, tracks *sectorrange.List) []byte {
	type transition struct {
		sector uint64
		audio  bool
	}
	var transitions []transition

	for i := 0; i < sessions.Len(); i++ {
		r, _ := sessions.Get(i)
		transitions = append(transitions, transition{sector: r.End()})
	}
	for i := 0; i < tracks.Len(); i++ {
		r, _ := tracks.Get(i)
		transitions = append(transitions, transition{sector: r.End(), audio: true})
	}

	for i := 1; i < len(transitions); i++ {
		j := i
		for j > 0 && transitions[j-1].sector > transitions[j].sector {
			transitions[j-1], transitions[j] = transitions[j], transitions[j-1]
			j--
		}
	}

	numberOfEntries := 0
	if len(transitions) > 0 {
		numberOfEntries = len(transitions) + 1
	}
	entriesSize := numberOfEntries * entrySizeV2
	buf := make([]byte, headerSizeV2+entriesSize+footerSizeV2)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(numberOfEntries))
	headerCksum := checksum.Sum(checksum.Seed, buf[:16])
	binary.LittleEndian.PutUint32(buf[16:20], headerCksum)

	entriesStart := headerSizeV2
	if numberOfEntries > 0 {
		var seedSector uint64
		if sessions.Len() > 0 {
			first, _ := sessions.Get(0)
			seedSector = first.Start
		} else if tracks.Len() > 0 {
			first, _ := tracks.Get(0)
			seedSector = first.Start
		}
		seed := buf[entriesStart : entriesStart+entrySizeV2]
		binary.LittleEndian.PutUint64(seed[0:8], seedSector)

		for i, tr := range transitions {
			e := buf[entriesStart+(i+1)*entrySizeV2 : entriesStart+(i+2)*entrySizeV2]
			binary.LittleEndian.PutUint64(e[0:8], tr.sector)
			var flags uint32
			if tr.audio {
				flags |= flagAudioTrack
			}
			binary.LittleEndian.PutUint32(e[8:12], flags)
		}
	}

	entriesEnd := entriesStart + entriesSize
	footer := checksum.Sum(checksum.Seed, buf[entriesStart:entriesEnd])
	binary.LittleEndian.PutUint32(buf[entriesEnd:entriesEnd+4], footer)

	return buf
}
