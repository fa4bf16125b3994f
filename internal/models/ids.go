package models

// IDKind names an identifier sequence and its label prefix.
type IDKind struct {
	Sequence string
	Prefix   string
}

var (
	IDSession = IDKind{Sequence: "session_id_seq", Prefix: "S"}
	IDAccount = IDKind{Sequence: "account_id_seq", Prefix: "U"}
	IDAdmin   = IDKind{Sequence: "admin_id_seq", Prefix: "A"}
	IDTopic   = IDKind{Sequence: "topic_id_seq", Prefix: "T"}
)
