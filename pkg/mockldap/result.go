package mockldap

// Success markers carried in Result.Code. These are the BER application
// response tags a real server puts on the wire, and callers written
// against the real protocol check for them literally.
const (
	BindResultCode     = 97
	SearchDoneCode     = 101
	ModifyResultCode   = 103
	AddResultCode      = 105
	DelResultCode      = 107
	ModifyDNResultCode = 109
)

// Result is the outcome of a successful write-style operation.
type Result struct {
	// Code is the operation's success marker.
	Code int

	// MsgID is the sequence number of the operation on its connection.
	// Only Add fills it in; the real client surfaces it there and some
	// callers assert on it.
	MsgID int
}
