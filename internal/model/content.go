package model

import "time"

// News はお知らせ記事を表す。本文は管理者が作成したHTML。
type News struct {
	ID          int64
	Title       string
	Subtitle    string
	Content     string
	ImageURL    string
	AuthorID    int64
	PublishedAt time.Time
	ExpiresAt   *time.Time
}

// Event は学内イベントを表す。
type Event struct {
	ID              int64
	Title           string
	Description     string
	Location        string
	RegistrationURL string
	OrganizerID     int64
	StartsAt        time.Time
	EndsAt          *time.Time
}

// OpportunityType は学内機会（奨学金・研究プロジェクト等）の種別を表す。
type OpportunityType struct {
	ID   int64
	Name string
}

// InfoEntry はキーで引く大学の基本情報（連絡先・所在地など）を表す。
// キーは自然キーであり、同一キーへの書き込みは上書きになる。
type InfoEntry struct {
	ID        int64
	Key       string
	Title     string
	Content   string
	Address   string
	Phone     string
	Email     string
	UpdatedAt time.Time
}

// Opportunity は学内機会の掲載情報を表す。
type Opportunity struct {
	ID          int64
	Title       string
	Description string
	TypeID      int64
	AuthorID    int64
	PublishedAt time.Time
	Deadline    *time.Time
}
