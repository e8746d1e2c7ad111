package domain

type CaseRef struct {
	ID     int64
	Number string
}

type Queue struct {
	ID      int64
	Name    string
	Pending int
	Starred bool
}
