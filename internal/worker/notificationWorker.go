package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/oluseyi/kycflow/internal/handler"
	"github.com/oluseyi/kycflow/internal/stream"
)

// ConfirmedNotificationWorker emails customers whose KYC form was confirmed,
// including the welcome credit that came with it.
func (wk *Worker) ConfirmedNotificationWorker() {
	wk.consumeDecisions(kycConfirmedGroupID, handler.KycConfirmedTopic, wk.notifyConfirmed)
}

// RejectedNotificationWorker emails customers whose KYC form was rejected so
// they know they can submit a new one.
func (wk *Worker) RejectedNotificationWorker() {
	wk.consumeDecisions(kycRejectedGroupID, handler.KycRejectedTopic, wk.notifyRejected)
}

func (wk *Worker) consumeDecisions(groupID, topic string, notify func(*handler.KycEvent) bool) {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: groupID,
		Topic:   topic,
	})
	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}

	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			log.Printf("KYC decision message received on %s: %s\n", e.TopicPartition, string(e.Value))

			var kycEvent handler.KycEvent
			if err := json.Unmarshal(e.Value, &kycEvent); err != nil {
				log.Printf("Error decoding KYC event: %v", err)
				continue
			}

			if notify(&kycEvent) {
				log.Printf("Notification sent for phone number %s", kycEvent.PhoneNumber)
			}
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) notifyConfirmed(event *handler.KycEvent) bool {
	// forms and users are associated by phone number; a form submitted for a
	// phone that has no registered account gets no email
	user, found, err := wk.DB.User().GetByPhoneNumber(event.PhoneNumber)
	if err != nil {
		log.Printf("Error finding user for phone number %s: %v", event.PhoneNumber, err)
		return false
	}
	if !found {
		log.Printf("No registered user for phone number %s, skipping notification", event.PhoneNumber)
		return false
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = user.FirstName
	emailData["PhoneNumber"] = event.PhoneNumber
	emailData["Amount"] = wk.Helper.FormatAmount(event.Amount)

	if err := wk.Mailer.Send(user.Email, emailData, "kyc-confirmed.tmpl"); err != nil {
		log.Printf("Error sending KYC confirmation email: %v", err)
		return false
	}

	return true
}

func (wk *Worker) notifyRejected(event *handler.KycEvent) bool {
	user, found, err := wk.DB.User().GetByPhoneNumber(event.PhoneNumber)
	if err != nil {
		log.Printf("Error finding user for phone number %s: %v", event.PhoneNumber, err)
		return false
	}
	if !found {
		log.Printf("No registered user for phone number %s, skipping notification", event.PhoneNumber)
		return false
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = user.FirstName
	emailData["PhoneNumber"] = event.PhoneNumber

	if err := wk.Mailer.Send(user.Email, emailData, "kyc-rejected.tmpl"); err != nil {
		log.Printf("Error sending KYC rejection email: %v", err)
		return false
	}

	return true
}
