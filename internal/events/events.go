// Package events публикует события синхронизации файлов.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// FileSynced — результат попытки синхронизации одного файла.
type FileSynced struct {
	FileID       string    `json:"fileId"`
	UserID       int64     `json:"userId"`
	SubjectID    string    `json:"subjectId"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	RemoteFileID string    `json:"remoteFileId,omitempty"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}

// Publisher доставляет события. Ошибка публикации не влияет на результат синхронизации.
type Publisher interface {
	PublishFileSynced(ctx context.Context, ev FileSynced) error
	Close() error
}

// Nop — публикатор, который ничего не делает (Kafka не настроена).
type Nop struct{}

func (Nop) PublishFileSynced(context.Context, FileSynced) error { return nil }
func (Nop) Close() error                                        { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka пишет события в топик; ключ сообщения — ID пользователя,
// чтобы события одного пользователя попадали в одну партицию.
type Kafka struct {
	w messageWriter
}

// Запись синхронная и идёт внутри HTTP-запроса, поэтому пачка не ждёт накопления
// сообщений дольше batchTimeout.
const (
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 5 * time.Second
)

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) PublishFileSynced(ctx context.Context, ev FileSynced) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish file synced: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.w.Close() }
