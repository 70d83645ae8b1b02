// Copyright The LibTrace Authors
// SPDX-License-Identifier: Apache-2.0

package etw // import "github.com/fdoray/libtrace/etw"

import (
	"errors"
)

// ErrNoReader is returned by NewFileOpener when no platform trace reader
// binding has been registered.
var ErrNoReader = errors.New("no trace reader binding registered")

// fileOpener is installed by the platform trace reader binding at init
// time. The binding is an external collaborator; this package only
// defines the contract.
var fileOpener TraceOpener

// RegisterFileOpener installs the production trace file opener.
func RegisterFileOpener(opener TraceOpener) {
	fileOpener = opener
}

// NewFileOpener returns the registered trace file opener.
func NewFileOpener() (TraceOpener, error) {
	if fileOpener == nil {
		return nil, ErrNoReader
	}
	return fileOpener, nil
}
