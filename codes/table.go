// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package codes

// entry pairs the symbolic name of a code with the store's one-line
// description of it.
type entry struct {
	symbol  string
	comment string
}

// Lookup returns the symbolic name and description of a code. The
// lookup is by exact code: an extended code not present in the table
// reports ok=false even when its primary classification is known, and
// the caller performs a second lookup with Primary if it wants the
// primary pair as well.
func Lookup(c Code) (symbol, comment string, ok bool) {
	e, ok := table[c]
	return e.symbol, e.comment, ok
}

var table = map[Code]entry{
	OK:         {"SQLITE_OK", "not an error"},
	Error:      {"SQLITE_ERROR", "SQL logic error"},
	Internal:   {"SQLITE_INTERNAL", "internal logic error"},
	Perm:       {"SQLITE_PERM", "access permission denied"},
	Abort:      {"SQLITE_ABORT", "query aborted"},
	Busy:       {"SQLITE_BUSY", "database is locked"},
	Locked:     {"SQLITE_LOCKED", "database table is locked"},
	NoMem:      {"SQLITE_NOMEM", "out of memory"},
	ReadOnly:   {"SQLITE_READONLY", "attempt to write a readonly database"},
	Interrupt:  {"SQLITE_INTERRUPT", "interrupted"},
	IOErr:      {"SQLITE_IOERR", "disk I/O error"},
	Corrupt:    {"SQLITE_CORRUPT", "database disk image is malformed"},
	NotFound:   {"SQLITE_NOTFOUND", "unknown operation"},
	Full:       {"SQLITE_FULL", "database or disk is full"},
	CantOpen:   {"SQLITE_CANTOPEN", "unable to open database file"},
	Protocol:   {"SQLITE_PROTOCOL", "locking protocol"},
	Empty:      {"SQLITE_EMPTY", "empty database"},
	Schema:     {"SQLITE_SCHEMA", "database schema has changed"},
	TooBig:     {"SQLITE_TOOBIG", "string or blob too big"},
	Constraint: {"SQLITE_CONSTRAINT", "constraint failed"},
	Mismatch:   {"SQLITE_MISMATCH", "datatype mismatch"},
	Misuse:     {"SQLITE_MISUSE", "bad parameter or other API misuse"},
	NoLFS:      {"SQLITE_NOLFS", "large file support is disabled"},
	Auth:       {"SQLITE_AUTH", "authorization denied"},
	Format:     {"SQLITE_FORMAT", "unknown error"},
	Range:      {"SQLITE_RANGE", "column index out of range"},
	NotADB:     {"SQLITE_NOTADB", "file is not a database"},
	Notice:     {"SQLITE_NOTICE", "notification message"},
	Warning:    {"SQLITE_WARNING", "warning message"},
	Row:        {"SQLITE_ROW", "another row available"},
	Done:       {"SQLITE_DONE", "no more rows available"},

	ErrorMissingCollSeq:    {"SQLITE_ERROR_MISSING_COLLSEQ", "unknown collating sequence"},
	ErrorRetry:             {"SQLITE_ERROR_RETRY", "prepare retry requested"},
	ErrorSnapshot:          {"SQLITE_ERROR_SNAPSHOT", "snapshot is no longer valid"},
	IOErrRead:              {"SQLITE_IOERR_READ", "error reading from disk"},
	IOErrShortRead:         {"SQLITE_IOERR_SHORT_READ", "short read from disk"},
	IOErrWrite:             {"SQLITE_IOERR_WRITE", "error writing to disk"},
	IOErrFsync:             {"SQLITE_IOERR_FSYNC", "error syncing file to disk"},
	IOErrDirFsync:          {"SQLITE_IOERR_DIR_FSYNC", "error syncing directory to disk"},
	IOErrTruncate:          {"SQLITE_IOERR_TRUNCATE", "error truncating file"},
	IOErrFstat:             {"SQLITE_IOERR_FSTAT", "error reading file metadata"},
	IOErrUnlock:            {"SQLITE_IOERR_UNLOCK", "error releasing a file lock"},
	IOErrRdlock:            {"SQLITE_IOERR_RDLOCK", "error obtaining a read lock"},
	IOErrDelete:            {"SQLITE_IOERR_DELETE", "error deleting file"},
	IOErrBlocked:           {"SQLITE_IOERR_BLOCKED", "operation blocked"},
	IOErrNoMem:             {"SQLITE_IOERR_NOMEM", "out of memory in the I/O layer"},
	IOErrAccess:            {"SQLITE_IOERR_ACCESS", "error checking file access"},
	IOErrCheckReservedLock: {"SQLITE_IOERR_CHECKRESERVEDLOCK", "error checking reserved lock"},
	IOErrLock:              {"SQLITE_IOERR_LOCK", "error obtaining a file lock"},
	IOErrClose:             {"SQLITE_IOERR_CLOSE", "error closing file"},
	IOErrShmOpen:           {"SQLITE_IOERR_SHMOPEN", "error opening shared memory"},
	IOErrShmSize:           {"SQLITE_IOERR_SHMSIZE", "error resizing shared memory"},
	IOErrShmLock:           {"SQLITE_IOERR_SHMLOCK", "error locking shared memory"},
	IOErrShmMap:            {"SQLITE_IOERR_SHMMAP", "error mapping shared memory"},
	IOErrSeek:              {"SQLITE_IOERR_SEEK", "error seeking in file"},
	IOErrDeleteNoEnt:       {"SQLITE_IOERR_DELETE_NOENT", "file to delete does not exist"},
	IOErrMmap:              {"SQLITE_IOERR_MMAP", "error memory-mapping file"},
	IOErrGetTempPath:       {"SQLITE_IOERR_GETTEMPPATH", "cannot determine temporary directory"},
	IOErrConvPath:          {"SQLITE_IOERR_CONVPATH", "error converting file path"},
	IOErrVnode:             {"SQLITE_IOERR_VNODE", "vnode layer error"},
	IOErrAuth:              {"SQLITE_IOERR_AUTH", "authorization denied in the I/O layer"},
	IOErrBeginAtomic:       {"SQLITE_IOERR_BEGIN_ATOMIC", "error starting atomic write"},
	IOErrCommitAtomic:      {"SQLITE_IOERR_COMMIT_ATOMIC", "error committing atomic write"},
	IOErrRollbackAtomic:    {"SQLITE_IOERR_ROLLBACK_ATOMIC", "error rolling back atomic write"},
	IOErrData:              {"SQLITE_IOERR_DATA", "checksum failure on read"},
	IOErrCorruptFS:         {"SQLITE_IOERR_CORRUPTFS", "filesystem corruption detected"},
	LockedSharedCache:      {"SQLITE_LOCKED_SHAREDCACHE", "table locked by a shared-cache connection"},
	LockedVTab:             {"SQLITE_LOCKED_VTAB", "table locked by a virtual table"},
	BusyRecovery:           {"SQLITE_BUSY_RECOVERY", "another connection is recovering the database"},
	BusySnapshot:           {"SQLITE_BUSY_SNAPSHOT", "cannot promote read transaction to write"},
	BusyTimeout:            {"SQLITE_BUSY_TIMEOUT", "blocking lock timed out"},
	CantOpenNoTempDir:      {"SQLITE_CANTOPEN_NOTEMPDIR", "no temporary directory available"},
	CantOpenIsDir:          {"SQLITE_CANTOPEN_ISDIR", "path is a directory"},
	CantOpenFullPath:       {"SQLITE_CANTOPEN_FULLPATH", "cannot resolve full path"},
	CantOpenConvPath:       {"SQLITE_CANTOPEN_CONVPATH", "error converting database path"},
	CantOpenSymlink:        {"SQLITE_CANTOPEN_SYMLINK", "path is a symbolic link"},
	CorruptVTab:            {"SQLITE_CORRUPT_VTAB", "virtual table content is corrupt"},
	CorruptSequence:        {"SQLITE_CORRUPT_SEQUENCE", "sequence table is corrupt"},
	CorruptIndex:           {"SQLITE_CORRUPT_INDEX", "index content is corrupt"},
	ReadOnlyRecovery:       {"SQLITE_READONLY_RECOVERY", "recovery requires a writable database"},
	ReadOnlyCantLock:       {"SQLITE_READONLY_CANTLOCK", "cannot obtain the required lock"},
	ReadOnlyRollback:       {"SQLITE_READONLY_ROLLBACK", "hot journal requires rollback"},
	ReadOnlyDBMoved:        {"SQLITE_READONLY_DBMOVED", "database file has been moved"},
	ReadOnlyCantInit:       {"SQLITE_READONLY_CANTINIT", "shared memory not initialized"},
	ReadOnlyDirectory:      {"SQLITE_READONLY_DIRECTORY", "database directory is not writable"},
	AbortRollback:          {"SQLITE_ABORT_ROLLBACK", "transaction rolled back"},
	ConstraintCheck:        {"SQLITE_CONSTRAINT_CHECK", "CHECK constraint failed"},
	ConstraintCommitHook:   {"SQLITE_CONSTRAINT_COMMITHOOK", "commit hook aborted the transaction"},
	ConstraintForeignKey:   {"SQLITE_CONSTRAINT_FOREIGNKEY", "FOREIGN KEY constraint failed"},
	ConstraintFunction:     {"SQLITE_CONSTRAINT_FUNCTION", "function raised a constraint"},
	ConstraintNotNull:      {"SQLITE_CONSTRAINT_NOTNULL", "NOT NULL constraint failed"},
	ConstraintPrimaryKey:   {"SQLITE_CONSTRAINT_PRIMARYKEY", "PRIMARY KEY constraint failed"},
	ConstraintTrigger:      {"SQLITE_CONSTRAINT_TRIGGER", "trigger aborted the statement"},
	ConstraintUnique:       {"SQLITE_CONSTRAINT_UNIQUE", "UNIQUE constraint failed"},
	ConstraintVTab:         {"SQLITE_CONSTRAINT_VTAB", "virtual table constraint failed"},
	ConstraintRowID:        {"SQLITE_CONSTRAINT_ROWID", "rowid is not unique"},
	ConstraintPinned:       {"SQLITE_CONSTRAINT_PINNED", "cannot update a pinned row"},
	ConstraintDataType:     {"SQLITE_CONSTRAINT_DATATYPE", "strict table type check failed"},
	NoticeRecoverWAL:       {"SQLITE_NOTICE_RECOVER_WAL", "recovered frames from WAL file"},
	NoticeRecoverRollback:  {"SQLITE_NOTICE_RECOVER_ROLLBACK", "recovered a rollback journal"},
	WarningAutoIndex:       {"SQLITE_WARNING_AUTOINDEX", "automatic index used"},
	AuthUser:               {"SQLITE_AUTH_USER", "user authorization denied"},
	OKLoadPermanently:      {"SQLITE_OK_LOAD_PERMANENTLY", "extension loaded permanently"},
}
