package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
)

// Session is the JSON shape of one assembled study session.
type Session struct {
	ID          string        `json:"id"`
	SessionSize int           `json:"session_size"`
	ReviewCount int           `json:"review_count"`
	NewCount    int           `json:"new_count"`
	Items       []SessionItem `json:"items"`
	CreatedAt   time.Time     `json:"created_at"`
}

type SessionItem struct {
	ProgressID int64         `json:"progress_id"`
	Unit       KnowledgeUnit `json:"unit"`
	Exercise   *Exercise     `json:"exercise,omitempty"`
	SRS        SRSSnapshot   `json:"srs"`
	Stage      string        `json:"stage"`
}

type KnowledgeUnit struct {
	ID        int64    `json:"id"`
	Topic     string   `json:"topic"`
	SubTopic  string   `json:"sub_topic,omitempty"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"key_points,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type Exercise struct {
	ID            int64    `json:"id"`
	Type          string   `json:"type"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Difficulty    string   `json:"difficulty"`
}

type SRSSnapshot struct {
	Status          string    `json:"status"`
	IntervalDays    int32     `json:"interval_days"`
	Repetitions     int32     `json:"repetitions"`
	EaseFactor      float64   `json:"ease_factor"`
	NextReviewAt    time.Time `json:"next_review_at"`
	IncorrectCount  int32     `json:"incorrect_count"`
	TotalAttempts   int32     `json:"total_attempts"`
	CorrectAttempts int32     `json:"correct_attempts"`
}

// FromSession converts a domain session to its JSON shape.
func FromSession(in *entity.Session) *Session {
	return &Session{
		ID:          in.ID,
		SessionSize: in.SessionSize,
		ReviewCount: in.ReviewCount,
		NewCount:    in.NewCount,
		Items:       lo.Map(in.Items, func(item entity.SessionItem, _ int) SessionItem { return fromSessionItem(item) }),
		CreatedAt:   in.CreatedAt,
	}
}

func fromSessionItem(in entity.SessionItem) SessionItem {
	return SessionItem{
		ProgressID: in.ProgressID,
		Unit:       fromKnowledgeUnit(in.Unit),
		Exercise:   fromExercise(in.Exercise),
		SRS:        fromSnapshot(in.SRS),
		Stage:      string(in.Stage),
	}
}

func fromKnowledgeUnit(in entity.KnowledgeUnit) KnowledgeUnit {
	return KnowledgeUnit{
		ID:        in.ID,
		Topic:     in.Topic,
		SubTopic:  in.SubTopic,
		Content:   in.Content,
		KeyPoints: in.KeyPoints,
		Tags:      in.Tags,
	}
}

func fromExercise(in *entity.Exercise) *Exercise {
	if in == nil {
		return nil
	}
	return &Exercise{
		ID:            in.ID,
		Type:          string(in.Type),
		QuestionText:  in.QuestionText,
		Options:       in.Options,
		CorrectAnswer: in.CorrectAnswer,
		Explanation:   in.Explanation,
		Difficulty:    string(in.Difficulty),
	}
}

func fromSnapshot(in entity.SRSSnapshot) SRSSnapshot {
	return SRSSnapshot{
		Status:          string(in.Status),
		IntervalDays:    in.IntervalDays,
		Repetitions:     in.Repetitions,
		EaseFactor:      in.EaseFactor,
		NextReviewAt:    in.NextReviewAt,
		IncorrectCount:  in.IncorrectCount,
		TotalAttempts:   in.TotalAttempts,
		CorrectAttempts: in.CorrectAttempts,
	}
}
