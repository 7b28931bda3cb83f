package game

import (
	"errors"
	"testing"
)

func validQuestion() Question {
	return Question{
		Text:      "Qual a capital do Brasil?",
		Options:   []string{"São Paulo", "Brasília", "Rio de Janeiro", "Salvador"},
		Correct:   1,
		TimeLimit: 20,
	}
}

func TestQuestionNormalize(t *testing.T) {
	q := Question{
		Text:    "  Pergunta  ",
		Options: []string{" a ", "b", " c", "d "},
	}
	q.Normalize()

	if q.Text != "Pergunta" {
		t.Errorf("text = %q", q.Text)
	}
	if q.Options[0] != "a" || q.Options[3] != "d" {
		t.Errorf("options not trimmed: %v", q.Options)
	}
	if q.TimeLimit != DefaultTimeLimit {
		t.Errorf("time limit = %d, want default %d", q.TimeLimit, DefaultTimeLimit)
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Question)
		wantErr error
	}{
		{"valid", func(q *Question) {}, nil},
		{"empty text", func(q *Question) { q.Text = "" }, ErrQuestionText},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, ErrQuestionOptions},
		{"blank option", func(q *Question) { q.Options[2] = "" }, ErrQuestionOptions},
		{"correct negative", func(q *Question) { q.Correct = -1 }, ErrQuestionCorrect},
		{"correct too high", func(q *Question) { q.Correct = 4 }, ErrQuestionCorrect},
		{"limit too short", func(q *Question) { q.TimeLimit = 4 }, ErrQuestionTime},
		{"limit too long", func(q *Question) { q.TimeLimit = 61 }, ErrQuestionTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			if err := q.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionViewHidesAnswer(t *testing.T) {
	q := validQuestion()
	view := q.View()

	if view.Text != q.Text || view.Deadline != q.TimeLimit {
		t.Errorf("view = %+v", view)
	}
	view.Options[0] = "changed"
	if q.Options[0] == "changed" {
		t.Error("view shares the options slice with the question")
	}
}

func TestBank(t *testing.T) {
	b := NewBank()

	if err := b.Append(validQuestion()); err != nil {
		t.Fatal(err)
	}
	q2 := validQuestion()
	q2.Text = "Segunda pergunta?"
	if err := b.Append(q2); err != nil {
		t.Fatal(err)
	}
	if b.Count() != 2 {
		t.Fatalf("Count() = %d", b.Count())
	}

	bad := validQuestion()
	bad.Correct = 9
	if err := b.Append(bad); err == nil {
		t.Error("invalid question accepted")
	}

	got, err := b.Get(1)
	if err != nil || got.Text != "Segunda pergunta?" {
		t.Errorf("Get(1) = %+v, %v", got, err)
	}
	if _, err := b.Get(2); !errors.Is(err, ErrQuestionIndex) {
		t.Errorf("Get(2) err = %v", err)
	}

	if err := b.RemoveAt(0); err != nil {
		t.Fatal(err)
	}
	if b.Count() != 1 {
		t.Errorf("Count() after remove = %d", b.Count())
	}
	first, _ := b.Get(0)
	if first.Text != "Segunda pergunta?" {
		t.Error("RemoveAt removed the wrong question")
	}
	if err := b.RemoveAt(5); !errors.Is(err, ErrQuestionIndex) {
		t.Errorf("RemoveAt(5) err = %v", err)
	}

	b.Clear()
	if b.Count() != 0 {
		t.Error("Clear left questions behind")
	}
}

func TestBankListIsDetached(t *testing.T) {
	b := NewBank()
	b.Append(validQuestion())

	list := b.List()
	list[0].Text = "changed"

	got, _ := b.Get(0)
	if got.Text == "changed" {
		t.Error("List shares backing storage with the bank")
	}
}
