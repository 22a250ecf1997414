package db

import (
	"github.com/jsphweid/drumbbn/model"
	"github.com/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// Store keeps a history of generation outcomes in DynamoDB, keyed by the
// generation id under "PK".
type Store struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

type item struct {
	PK       string
	Style    string
	Seed     int64
	Steps    int
	Attempts int
	Score    float64
	Accepted bool
	MidiFile string `dynamodbav:",omitempty"`
}

func NewStore(endpoint, table string) (*Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Could not create a new DynamoDB session")
	}
	return NewStoreWithClient(dynamodb.New(sess), table), nil
}

func NewStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) PutGeneration(rec model.GenerationRecord) error {
	if rec.ID == "" {
		return errors.New("generation record has no id")
	}
	av, err := dynamodbattribute.MarshalMap(item{
		PK:       rec.ID,
		Style:    rec.Style,
		Seed:     rec.Seed,
		Steps:    rec.Steps,
		Attempts: rec.Attempts,
		Score:    rec.Score,
		Accepted: rec.Accepted,
		MidiFile: rec.MidiFile,
	})
	if err != nil {
		return errors.Wrap(err, "marshalling generation record")
	}
	_, err = s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	return errors.Wrap(err, "Error from DynamoDB")
}

// GetGeneration reports false when no record has the id.
func (s *Store) GetGeneration(id string) (model.GenerationRecord, bool, error) {
	var rec model.GenerationRecord
	out, err := s.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		},
	})
	if err != nil {
		return rec, false, errors.Wrap(err, "Error from DynamoDB")
	}
	if len(out.Item) == 0 {
		return rec, false, nil
	}

	var it item
	if err := dynamodbattribute.UnmarshalMap(out.Item, &it); err != nil {
		return rec, false, errors.Wrap(err, "unmarshalling generation record")
	}
	rec = model.GenerationRecord{
		ID:       it.PK,
		Style:    it.Style,
		Seed:     it.Seed,
		Steps:    it.Steps,
		Attempts: it.Attempts,
		Score:    it.Score,
		Accepted: it.Accepted,
		MidiFile: it.MidiFile,
	}
	return rec, true, nil
}
