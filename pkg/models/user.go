package models

import "time"

// User lives at users/{username}. The username is the document ID and is
// never re-keyed after registration.
type User struct {
	Username      string     `firestore:"username" json:"username"`
	Email         string     `firestore:"email" json:"email"`
	BackupEmail   string     `firestore:"backupEmail,omitempty" json:"backup_email,omitempty"`
	Code          string     `firestore:"code" json:"-"`
	CodeCreatedAt *time.Time `firestore:"codeCreatedAt" json:"-"`
	Online        bool       `firestore:"online" json:"online"`
	LastSeen      *time.Time `firestore:"lastSeen" json:"last_seen,omitempty"`
	Tries         int64      `firestore:"tries" json:"tries"`
	Won           int64      `firestore:"won" json:"won"`
	WonLevel      []string   `firestore:"wonLevel" json:"won_level"`
}
