// Package stdio provides C-style buffered streams over a descriptor table.
//
// Streams are opened with fopen mode strings ("r", "w+", "a", ...) and keep
// end-of-file and error indicators that are consulted after a short Fread or
// Fwrite:
//
//	s, err := stdio.Open(sys, "/data/log.txt", "a")
//	if err != nil {
//		return err
//	}
//	if n := s.Fwrite(line); n < len(line) {
//		return s.Ferror()
//	}
//	return s.Fclose()
//
// A Stream is not safe for concurrent use.
package stdio
