package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestKafka_Publish(t *testing.T) {
	producer := &fakeProducer{}
	sink, err := NewKafka(producer, "")
	require.NoError(t, err)

	event := Event{ID: "42", DeletedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, sink.Publish(context.Background(), event))

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, DefaultKafkaTopic, rec.Topic)
	assert.Equal(t, []byte("42"), rec.Key)

	var decoded Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafka_PublishError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	sink, err := NewKafka(producer, "deletes")
	require.NoError(t, err)

	err = sink.Publish(context.Background(), Event{ID: "42"})
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, "deletes", producer.records[0].Topic)
}

func TestNewSinksRequireClients(t *testing.T) {
	_, err := NewKafka(nil, "")
	assert.Error(t, err)
	_, err = NewRedis(nil)
	assert.Error(t, err)
}
