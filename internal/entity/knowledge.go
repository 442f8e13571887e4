package entity

// ExerciseType enumerates the exercise forms the selector can pick.
type ExerciseType string

const (
	ExerciseMultipleChoice   ExerciseType = "multiple_choice"
	ExerciseMultipleResponse ExerciseType = "multiple_response"
	ExerciseTrueFalse        ExerciseType = "true_false"
	ExerciseFillInTheBlank   ExerciseType = "fill_in_the_blank"
	ExerciseRecall           ExerciseType = "recall"
)

// Difficulty is the content author's rating of an exercise.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// KnowledgeUnit is an atomic learnable fact. Content is owned
// externally; the core reads only the fields below.
type KnowledgeUnit struct {
	ID          int64
	Topic       string
	SubTopic    string
	Content     string
	KeyPoints   []string
	Tags        []string
	ExerciseIDs []int64
}

// Exercise is one concrete prompt linked to a knowledge unit.
type Exercise struct {
	ID            int64
	UnitID        int64
	Type          ExerciseType
	Source        string
	QuestionText  string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Difficulty    Difficulty
}

// UnitRecap is the content summary returned with every submission
// result, independent of the exercise's own feedback.
type UnitRecap struct {
	UnitID    int64
	Topic     string
	Content   string
	KeyPoints []string
}
