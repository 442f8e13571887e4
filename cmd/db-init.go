/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/infrastructure/config"
	"github.com/eslsoft/revise/internal/infrastructure/database"
)

// dbInitCmd applies the database schema and optionally seeds
// knowledge units and exercises from a JSON file.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Apply database schema and optionally seed knowledge units",
	RunE: func(cmd *cobra.Command, args []string) error {
		seedPath, _ := cmd.Flags().GetString("seed")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		pool, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Println("schema applied")

		if seedPath == "" {
			return nil
		}
		units, err := loadSeedUnits(seedPath)
		if err != nil {
			return err
		}
		if err := seedKnowledge(ctx, pool, units); err != nil {
			return err
		}
		log.Printf("seeded %d knowledge units", len(units))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().String("seed", "", "path to a JSON file of knowledge units to import")
}

type seedExercise struct {
	Type          string   `json:"type"`
	Source        string   `json:"source"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
}

type seedUnit struct {
	Topic     string         `json:"topic"`
	SubTopic  string         `json:"sub_topic"`
	Content   string         `json:"content"`
	KeyPoints []string       `json:"key_points"`
	Tags      []string       `json:"tags"`
	Exercises []seedExercise `json:"exercises"`
}

func loadSeedUnits(path string) ([]seedUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	units, err := parseSeedUnits(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return units, nil
}

func parseSeedUnits(data []byte) ([]seedUnit, error) {
	var units []seedUnit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	for i, unit := range units {
		if unit.Topic == "" {
			return nil, fmt.Errorf("unit %d: topic is required", i)
		}
		if unit.Content == "" {
			return nil, fmt.Errorf("unit %d (%s): content is required", i, unit.Topic)
		}
		for j, ex := range unit.Exercises {
			if !validExerciseType(ex.Type) {
				return nil, fmt.Errorf("unit %d (%s) exercise %d: unknown type %q", i, unit.Topic, j, ex.Type)
			}
			if ex.QuestionText == "" || ex.CorrectAnswer == "" {
				return nil, fmt.Errorf("unit %d (%s) exercise %d: question_text and correct_answer are required", i, unit.Topic, j)
			}
		}
	}
	return units, nil
}

func validExerciseType(raw string) bool {
	switch entity.ExerciseType(raw) {
	case entity.ExerciseMultipleChoice, entity.ExerciseMultipleResponse,
		entity.ExerciseTrueFalse, entity.ExerciseFillInTheBlank, entity.ExerciseRecall:
		return true
	}
	return false
}

func seedKnowledge(ctx context.Context, pool *pgxpool.Pool, units []seedUnit) error {
	for _, unit := range units {
		var unitID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO knowledge_units (topic, sub_topic, content, key_points, tags)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			unit.Topic, unit.SubTopic, unit.Content, unit.KeyPoints, unit.Tags,
		).Scan(&unitID)
		if err != nil {
			return fmt.Errorf("insert unit %q: %w", unit.Topic, err)
		}

		for _, ex := range unit.Exercises {
			difficulty := ex.Difficulty
			if difficulty == "" {
				difficulty = string(entity.DifficultyMedium)
			}
			_, err := pool.Exec(ctx, `
				INSERT INTO exercises (unit_id, type, source, question_text, options,
					correct_answer, explanation, difficulty)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				unitID, ex.Type, ex.Source, ex.QuestionText, ex.Options,
				ex.CorrectAnswer, ex.Explanation, difficulty,
			)
			if err != nil {
				return fmt.Errorf("insert exercise for unit %q: %w", unit.Topic, err)
			}
		}
	}
	return nil
}
