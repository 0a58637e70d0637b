// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package codes defines the numeric result codes returned by the
// underlying store, the classification of codes into success and error
// classes, and the static table mapping codes to their symbolic names
// and one-line descriptions.
//
// An extended code packs a primary classification in its low byte and a
// minor sub-reason in the bytes above it. Primary returns the low byte.
package codes

import "strconv"

// Code is a numeric result code. Codes below 256 are primary codes;
// extended codes are formed as primary | minor<<8.
type Code int

// Primary result codes.
const (
	OK         Code = 0
	Error      Code = 1
	Internal   Code = 2
	Perm       Code = 3
	Abort      Code = 4
	Busy       Code = 5
	Locked     Code = 6
	NoMem      Code = 7
	ReadOnly   Code = 8
	Interrupt  Code = 9
	IOErr      Code = 10
	Corrupt    Code = 11
	NotFound   Code = 12
	Full       Code = 13
	CantOpen   Code = 14
	Protocol   Code = 15
	Empty      Code = 16
	Schema     Code = 17
	TooBig     Code = 18
	Constraint Code = 19
	Mismatch   Code = 20
	Misuse     Code = 21
	NoLFS      Code = 22
	Auth       Code = 23
	Format     Code = 24
	Range      Code = 25
	NotADB     Code = 26
	Notice     Code = 27
	Warning    Code = 28
	Row        Code = 100
	Done       Code = 101
)

// Extended result codes.
const (
	ErrorMissingCollSeq    = Error | 1<<8
	ErrorRetry             = Error | 2<<8
	ErrorSnapshot          = Error | 3<<8
	IOErrRead              = IOErr | 1<<8
	IOErrShortRead         = IOErr | 2<<8
	IOErrWrite             = IOErr | 3<<8
	IOErrFsync             = IOErr | 4<<8
	IOErrDirFsync          = IOErr | 5<<8
	IOErrTruncate          = IOErr | 6<<8
	IOErrFstat             = IOErr | 7<<8
	IOErrUnlock            = IOErr | 8<<8
	IOErrRdlock            = IOErr | 9<<8
	IOErrDelete            = IOErr | 10<<8
	IOErrBlocked           = IOErr | 11<<8
	IOErrNoMem             = IOErr | 12<<8
	IOErrAccess            = IOErr | 13<<8
	IOErrCheckReservedLock = IOErr | 14<<8
	IOErrLock              = IOErr | 15<<8
	IOErrClose             = IOErr | 16<<8
	IOErrShmOpen           = IOErr | 18<<8
	IOErrShmSize           = IOErr | 19<<8
	IOErrShmLock           = IOErr | 20<<8
	IOErrShmMap            = IOErr | 21<<8
	IOErrSeek              = IOErr | 22<<8
	IOErrDeleteNoEnt       = IOErr | 23<<8
	IOErrMmap              = IOErr | 24<<8
	IOErrGetTempPath       = IOErr | 25<<8
	IOErrConvPath          = IOErr | 26<<8
	IOErrVnode             = IOErr | 27<<8
	IOErrAuth              = IOErr | 28<<8
	IOErrBeginAtomic       = IOErr | 29<<8
	IOErrCommitAtomic      = IOErr | 30<<8
	IOErrRollbackAtomic    = IOErr | 31<<8
	IOErrData              = IOErr | 32<<8
	IOErrCorruptFS         = IOErr | 33<<8
	LockedSharedCache      = Locked | 1<<8
	LockedVTab             = Locked | 2<<8
	BusyRecovery           = Busy | 1<<8
	BusySnapshot           = Busy | 2<<8
	BusyTimeout            = Busy | 3<<8
	CantOpenNoTempDir      = CantOpen | 1<<8
	CantOpenIsDir          = CantOpen | 2<<8
	CantOpenFullPath       = CantOpen | 3<<8
	CantOpenConvPath       = CantOpen | 4<<8
	CantOpenSymlink        = CantOpen | 6<<8
	CorruptVTab            = Corrupt | 1<<8
	CorruptSequence        = Corrupt | 2<<8
	CorruptIndex           = Corrupt | 3<<8
	ReadOnlyRecovery       = ReadOnly | 1<<8
	ReadOnlyCantLock       = ReadOnly | 2<<8
	ReadOnlyRollback       = ReadOnly | 3<<8
	ReadOnlyDBMoved        = ReadOnly | 4<<8
	ReadOnlyCantInit       = ReadOnly | 5<<8
	ReadOnlyDirectory      = ReadOnly | 6<<8
	AbortRollback          = Abort | 2<<8
	ConstraintCheck        = Constraint | 1<<8
	ConstraintCommitHook   = Constraint | 2<<8
	ConstraintForeignKey   = Constraint | 3<<8
	ConstraintFunction     = Constraint | 4<<8
	ConstraintNotNull      = Constraint | 5<<8
	ConstraintPrimaryKey   = Constraint | 6<<8
	ConstraintTrigger      = Constraint | 7<<8
	ConstraintUnique       = Constraint | 8<<8
	ConstraintVTab         = Constraint | 9<<8
	ConstraintRowID        = Constraint | 10<<8
	ConstraintPinned       = Constraint | 11<<8
	ConstraintDataType     = Constraint | 12<<8
	NoticeRecoverWAL       = Notice | 1<<8
	NoticeRecoverRollback  = Notice | 2<<8
	WarningAutoIndex       = Warning | 1<<8
	AuthUser               = Auth | 1<<8
	OKLoadPermanently      = OK | 1<<8
)

// Primary returns the primary classification of the code: its low byte.
func (c Code) Primary() Code {
	return c & 0xff
}

// Success reports whether the code is success-class: OK, Row, Done, or
// a member of the caller-supplied exception set. Every other code is
// error-class and must be surfaced as an error.
func (c Code) Success(except ...Code) bool {
	if c == OK || c == Row || c == Done {
		return true
	}
	for _, e := range except {
		if c == e {
			return true
		}
	}
	return false
}

// String returns the symbolic name of the code when it is known, or the
// decimal code otherwise.
func (c Code) String() string {
	if sym, _, ok := Lookup(c); ok {
		return sym
	}
	return "code " + strconv.Itoa(int(c))
}
