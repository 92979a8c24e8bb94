package common

// FieldName is the record attribute every record is created with.
const FieldName = "name"

// Metadata keys kept in the client's local key/value table.
const (
	MetaLastSyncAt = "last_sync_at"
	MetaLastUser   = "last_user"
)
