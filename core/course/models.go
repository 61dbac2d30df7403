package course

// Course is a taught subject belonging to exactly one student group.
type Course struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	GroupID int    `json:"group_id"`
}

func (c Course) String() string { return c.Name }

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name    string `json:"name" validate:"required,max=50"`
	GroupID int    `json:"group_id" validate:"required"`
}

// UpdateCourse defines what may be changed on an existing Course.
type UpdateCourse struct {
	Name string `json:"name" validate:"required,max=50"`
}
