package model

import "time"

// JobCategory は求人カテゴリを表す。求人から外部キーで参照される。
type JobCategory struct {
	ID   int64
	Name string
}

// Tag は求人に付与されるタグを表す。名前は一意。
// 求人作成とは独立したライフサイクルを持ち、専用エンドポイントで随時作成される。
type Tag struct {
	ID   int64
	Name string
}

// JobPosting は求人情報を表す。
// タグとの関連はjob_posting_tags結合テーブル（複合主キー）で保持し、
// 更新時のタグ集合は常にリクエストで指定された集合への完全置換となる。
type JobPosting struct {
	ID           int64
	Title        string
	Description  string
	Requirements string
	CompanyName  string
	Location     string
	Salary       *float64
	Source       string
	URL          string
	CategoryID   int64
	PublisherID  int64
	PublishedAt  time.Time
	ExpiresAt    time.Time

	// Tags は関連タグ。一覧・詳細取得時にのみロードされる。
	Tags []Tag
}

// Active は求人が有効期限内かどうかを返す。
func (j *JobPosting) Active(now time.Time) bool {
	return j.ExpiresAt.After(now)
}
