package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartReservationConsumer connects to RabbitMQ, declares the
// reservation.confirmed queue (durable), and starts consuming messages.
// Each message is appended to logs/reservations.log in a single-line,
// human-friendly format. The function runs a reconnect loop; it keeps
// running and logs any processing errors while rejecting the offending
// message so the server continues operating.
func StartReservationConsumer() error {
	return runConsumer(ReservationQueueName, handleReservationMessage)
}

// StartMailConsumer consumes email.password_reset messages and appends
// the outgoing mail to logs/outbox.log.  No SMTP delivery is attempted;
// notifications are best effort.
func StartMailConsumer() error {
	return runConsumer(MailQueueName, handleMailMessage)
}

func runConsumer(queueName string, handle func([]byte) error) error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("%s-consumer: failed to dial broker: %v; retrying in %s", queueName, err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, queueName, handle); err != nil {
			log.Printf("%s-consumer: consume loop ended: %v; reconnecting", queueName, err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, queueName string, handle func([]byte) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("%s-consumer: set QoS failed: %v", queueName, err)
	}

	_, err = ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handle(d.Body); err != nil {
			log.Printf("%s-consumer: handle message failed: %v", queueName, err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleReservationMessage(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%d | user_id=%d | screening_id=%d | seat=row %d seat %d | movie=%q | cinema=%q | room=%d | starts=%s | price=%.2f\n",
		ev.ConfirmedAt, ev.ReservationID, ev.UserID, ev.ScreeningID, ev.RowNumber, ev.SeatNumber,
		ev.MovieTitle, ev.CinemaName, ev.RoomNumber, ev.StartTime, ev.TicketPrice)
	return appendLog("reservations.log", line)
}

func handleMailMessage(body []byte) error {
	var ev PasswordResetRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] To: %s | Subject: Reset Password | Click the link to reset your password: %s\n",
		ev.RequestedAt, ev.Email, ev.ResetLink)
	return appendLog("outbox.log", line)
}

func appendLog(name, line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
