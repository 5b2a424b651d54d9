package repository

import (
	"database/sql"

	"github.com/hitoshi/campushub/internal/model"
)

// このファイルは各エンティティのMapper実装を集約する。
// 結合・集合操作など1テーブルに閉じない操作は各エンティティのリポジトリに置く。

// --- Tag ---

type tagMapper struct{}

func (tagMapper) Table() string      { return "tags" }
func (tagMapper) EntityName() string { return "タグ" }
func (tagMapper) Columns() []string  { return []string{"name"} }

func (tagMapper) Values(t *model.Tag) []any { return []any{t.Name} }

func (tagMapper) Scan(row RowScanner) (*model.Tag, error) {
	t := &model.Tag{}
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return t, nil
}

func (tagMapper) Field(constraint string) string { return "" }

// --- JobCategory ---

type jobCategoryMapper struct{}

func (jobCategoryMapper) Table() string      { return "job_categories" }
func (jobCategoryMapper) EntityName() string { return "求人カテゴリ" }
func (jobCategoryMapper) Columns() []string  { return []string{"name"} }

func (jobCategoryMapper) Values(c *model.JobCategory) []any { return []any{c.Name} }

func (jobCategoryMapper) Scan(row RowScanner) (*model.JobCategory, error) {
	c := &model.JobCategory{}
	if err := row.Scan(&c.ID, &c.Name); err != nil {
		return nil, err
	}
	return c, nil
}

func (jobCategoryMapper) Field(constraint string) string { return "" }

// --- JobPosting ---

type jobPostingMapper struct{}

func (jobPostingMapper) Table() string      { return "job_postings" }
func (jobPostingMapper) EntityName() string { return "求人" }

func (jobPostingMapper) Columns() []string {
	return []string{
		"title", "description", "requirements", "company_name", "location",
		"salary", "source", "url", "category_id", "publisher_id",
		"published_at", "expires_at",
	}
}

func (jobPostingMapper) Values(j *model.JobPosting) []any {
	var salary sql.NullFloat64
	if j.Salary != nil {
		salary = sql.NullFloat64{Float64: *j.Salary, Valid: true}
	}
	return []any{
		j.Title, j.Description, j.Requirements, j.CompanyName, j.Location,
		salary, j.Source, j.URL, j.CategoryID, j.PublisherID,
		j.PublishedAt, j.ExpiresAt,
	}
}

func (jobPostingMapper) Scan(row RowScanner) (*model.JobPosting, error) {
	j := &model.JobPosting{}
	var salary sql.NullFloat64
	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Requirements, &j.CompanyName,
		&j.Location, &salary, &j.Source, &j.URL, &j.CategoryID,
		&j.PublisherID, &j.PublishedAt, &j.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	if salary.Valid {
		j.Salary = &salary.Float64
	}
	return j, nil
}

func (jobPostingMapper) Field(constraint string) string {
	switch constraint {
	case "job_postings_category_id_fkey":
		return "category_id"
	case "job_postings_publisher_id_fkey":
		return "publisher_id"
	}
	return ""
}

// --- News ---

type newsMapper struct{}

func (newsMapper) Table() string      { return "news" }
func (newsMapper) EntityName() string { return "お知らせ" }

func (newsMapper) Columns() []string {
	return []string{"title", "subtitle", "content", "image_url", "author_id", "published_at", "expires_at"}
}

func (newsMapper) Values(n *model.News) []any {
	var expires sql.NullTime
	if n.ExpiresAt != nil {
		expires = sql.NullTime{Time: *n.ExpiresAt, Valid: true}
	}
	return []any{n.Title, n.Subtitle, n.Content, n.ImageURL, n.AuthorID, n.PublishedAt, expires}
}

func (newsMapper) Scan(row RowScanner) (*model.News, error) {
	n := &model.News{}
	var expires sql.NullTime
	err := row.Scan(&n.ID, &n.Title, &n.Subtitle, &n.Content, &n.ImageURL, &n.AuthorID, &n.PublishedAt, &expires)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		n.ExpiresAt = &expires.Time
	}
	return n, nil
}

func (newsMapper) Field(constraint string) string { return "" }

// --- Event ---

type eventMapper struct{}

func (eventMapper) Table() string      { return "events" }
func (eventMapper) EntityName() string { return "イベント" }

func (eventMapper) Columns() []string {
	return []string{"title", "description", "location", "registration_url", "organizer_id", "starts_at", "ends_at"}
}

func (eventMapper) Values(e *model.Event) []any {
	var ends sql.NullTime
	if e.EndsAt != nil {
		ends = sql.NullTime{Time: *e.EndsAt, Valid: true}
	}
	return []any{e.Title, e.Description, e.Location, e.RegistrationURL, e.OrganizerID, e.StartsAt, ends}
}

func (eventMapper) Scan(row RowScanner) (*model.Event, error) {
	e := &model.Event{}
	var ends sql.NullTime
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.RegistrationURL, &e.OrganizerID, &e.StartsAt, &ends)
	if err != nil {
		return nil, err
	}
	if ends.Valid {
		e.EndsAt = &ends.Time
	}
	return e, nil
}

func (eventMapper) Field(constraint string) string { return "" }

// --- OpportunityType ---

type opportunityTypeMapper struct{}

func (opportunityTypeMapper) Table() string      { return "opportunity_types" }
func (opportunityTypeMapper) EntityName() string { return "機会種別" }
func (opportunityTypeMapper) Columns() []string  { return []string{"name"} }

func (opportunityTypeMapper) Values(t *model.OpportunityType) []any { return []any{t.Name} }

func (opportunityTypeMapper) Scan(row RowScanner) (*model.OpportunityType, error) {
	t := &model.OpportunityType{}
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return t, nil
}

func (opportunityTypeMapper) Field(constraint string) string { return "" }

// --- Opportunity ---

type opportunityMapper struct{}

func (opportunityMapper) Table() string      { return "opportunities" }
func (opportunityMapper) EntityName() string { return "学内機会" }

func (opportunityMapper) Columns() []string {
	return []string{"title", "description", "type_id", "author_id", "published_at", "deadline"}
}

func (opportunityMapper) Values(o *model.Opportunity) []any {
	var deadline sql.NullTime
	if o.Deadline != nil {
		deadline = sql.NullTime{Time: *o.Deadline, Valid: true}
	}
	return []any{o.Title, o.Description, o.TypeID, o.AuthorID, o.PublishedAt, deadline}
}

func (opportunityMapper) Scan(row RowScanner) (*model.Opportunity, error) {
	o := &model.Opportunity{}
	var deadline sql.NullTime
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.TypeID, &o.AuthorID, &o.PublishedAt, &deadline)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		o.Deadline = &deadline.Time
	}
	return o, nil
}

func (opportunityMapper) Field(constraint string) string {
	if constraint == "opportunities_type_id_fkey" {
		return "type_id"
	}
	return ""
}

// --- InfoEntry ---

type infoMapper struct{}

func (infoMapper) Table() string      { return "info_entries" }
func (infoMapper) EntityName() string { return "大学情報" }

func (infoMapper) Columns() []string {
	return []string{"key", "title", "content", "address", "phone", "email", "updated_at"}
}

func (infoMapper) Values(e *model.InfoEntry) []any {
	return []any{e.Key, e.Title, e.Content, e.Address, e.Phone, e.Email, e.UpdatedAt}
}

func (infoMapper) Scan(row RowScanner) (*model.InfoEntry, error) {
	e := &model.InfoEntry{}
	if err := row.Scan(&e.ID, &e.Key, &e.Title, &e.Content, &e.Address, &e.Phone, &e.Email, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (infoMapper) Field(constraint string) string {
	if constraint == "info_entries_key_key" {
		return "key"
	}
	return ""
}

// --- コンストラクタ ---

// NewNewsRepo はお知らせのジェネリックリポジトリを生成する。
func NewNewsRepo(db DBTX) *Generic[model.News] {
	return NewGeneric[model.News](db, newsMapper{})
}

// NewEventRepo はイベントのジェネリックリポジトリを生成する。
func NewEventRepo(db DBTX) *Generic[model.Event] {
	return NewGeneric[model.Event](db, eventMapper{})
}

// NewOpportunityRepo は学内機会のジェネリックリポジトリを生成する。
func NewOpportunityRepo(db DBTX) *Generic[model.Opportunity] {
	return NewGeneric[model.Opportunity](db, opportunityMapper{})
}

// NewOpportunityTypeRepo は機会種別のジェネリックリポジトリを生成する。
func NewOpportunityTypeRepo(db DBTX) *Generic[model.OpportunityType] {
	return NewGeneric[model.OpportunityType](db, opportunityTypeMapper{})
}

// NewJobCategoryRepo は求人カテゴリのジェネリックリポジトリを生成する。
func NewJobCategoryRepo(db DBTX) *Generic[model.JobCategory] {
	return NewGeneric[model.JobCategory](db, jobCategoryMapper{})
}
