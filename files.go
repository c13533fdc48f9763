// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package negbinfit

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

// zopen opens the named file, transparently decompressing it if fnm
// ends with ".gz".
func zopen(fnm string) (io.ReadCloser, error) {
	f, err := os.Open(fnm)
	if err != nil || !strings.HasSuffix(fnm, ".gz") {
		return f, err
	}
	rdr, err := pgzip.NewReader(bufio.NewReaderSize(f, 4*1024*1024))
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzipr{rdr, f}, nil
}

// gzipr wraps a ReadCloser and a Closer, presenting a single Close()
// method that closes both wrapped objects.
type gzipr struct {
	io.ReadCloser
	io.Closer
}

func (gr gzipr) Close() error {
	e1 := gr.ReadCloser.Close()
	e2 := gr.Closer.Close()
	if e1 != nil {
		return e1
	}
	return e2
}

// trimExt returns the base name of fnm without its extension(s),
// ignoring a trailing ".gz".
func trimExt(fnm string) string {
	base := strings.TrimSuffix(filepath.Base(fnm), ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// makeOutPath returns out/name, creating the directory if needed.
func makeOutPath(out, name string) (string, error) {
	dir := filepath.Join(out, name)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return "", err
	}
	return dir, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
