package core

// CopyFile copies the contents of src to dst through the same adapter,
// creating or truncating dst with the given mode. It is the portable
// substitute for a hard link on backends that do not support one.
func CopyFile[F, D any, FS FileSystem[F, D]](fsys FS, src, dst string, mode uint32) error {
	in, err := fsys.Open(src, O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer func() { _ = fsys.Close(in) }()

	out, err := fsys.Open(dst, O_WRONLY|O_CREAT|O_TRUNC, mode)
	if err != nil {
		return err
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := fsys.Read(in, buf)
		if err != nil {
			_ = fsys.Close(out)
			return err
		}
		if n == 0 {
			break
		}
		if _, err := fsys.Write(out, buf[:n]); err != nil {
			_ = fsys.Close(out)
			return err
		}
	}

	return fsys.Close(out)
}

// ReadAll reads from f until end of data.
func ReadAll[F, D any, FS FileSystem[F, D]](fsys FS, f F) ([]byte, error) {
	var data []byte
	buf := make([]byte, 4096)
	for {
		n, err := fsys.Read(f, buf)
		if err != nil {
			return data, err
		}
		if n == 0 {
			return data, nil
		}
		data = append(data, buf[:n]...)
	}
}
