// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
)

// encodeKey mirrors the key encoding the repositories apply before hitting
// the KV store, so tests can seed and inspect the mock directly.
func encodeKey(key string) (string, error) {
	return NewKeyBuilder("").EncodeKey(key)
}

func isErrorType(err error, errorType domain.ErrorType) bool {
	var domainErr *domain.DomainError
	return errors.As(err, &domainErr) && domainErr.Type == errorType
}

func TestNewNatsMeetingRepository(t *testing.T) {
	kv := newMockNatsKeyValue()

	repo := NewNatsMeetingRepository(kv)

	if repo == nil {
		t.Fatal("expected repository to be created")
	}
	if !repo.IsReady(context.Background()) {
		t.Error("expected repository to be ready")
	}
}

func TestNatsMeetingRepository_Create(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:      "meeting-123",
		RemoteID: "987654321",
		Topic:    "Quarterly Review",
		Status:   models.MeetingStatusScheduled,
	}

	err := repo.Create(context.Background(), meeting)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Verify the meeting was stored with encoded key
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	storedData, exists := kv.data[encodedKey]
	if !exists {
		t.Fatal("expected meeting to be stored")
	}

	var storedMeeting models.Meeting
	if err := json.Unmarshal(storedData, &storedMeeting); err != nil {
		t.Errorf("failed to unmarshal stored meeting: %v", err)
	}
	if storedMeeting.Topic != meeting.Topic {
		t.Errorf("expected Topic %s, got %s", meeting.Topic, storedMeeting.Topic)
	}

	// Verify the remote ID index stores the meeting UID
	indexKey, _ := encodeKey(fmt.Sprintf("index/remote/%s", meeting.RemoteID))
	indexValue, exists := kv.data[indexKey]
	if !exists {
		t.Fatal("expected remote ID index to be stored")
	}
	if string(indexValue) != meeting.UID {
		t.Errorf("expected index value %s, got %s", meeting.UID, string(indexValue))
	}
}

func TestNatsMeetingRepository_Create_GeneratesUID(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		Topic:  "Untracked Sync Call",
		Status: models.MeetingStatusScheduled,
	}

	err := repo.Create(context.Background(), meeting)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if meeting.UID == "" {
		t.Error("expected UID to be generated")
	}
}

func TestNatsMeetingRepository_Create_NoRemoteIDSkipsIndex(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:    "meeting-123",
		Topic:  "Local Only",
		Status: models.MeetingStatusScheduled,
	}

	err := repo.Create(context.Background(), meeting)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if len(kv.data) != 1 {
		t.Errorf("expected only the meeting record, got %d entries", len(kv.data))
	}
}

func TestNatsMeetingRepository_Get(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:    "meeting-123",
		Topic:  "Quarterly Review",
		Status: models.MeetingStatusScheduled,
	}

	meetingData, _ := json.Marshal(meeting)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	kv.data = map[string][]byte{
		encodedKey: meetingData,
	}

	result, err := repo.Get(context.Background(), meeting.UID)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.UID != meeting.UID {
		t.Errorf("expected UID %s, got %s", meeting.UID, result.UID)
	}
	if result.Topic != meeting.Topic {
		t.Errorf("expected Topic %s, got %s", meeting.Topic, result.Topic)
	}
}

func TestNatsMeetingRepository_Get_NotFound(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	_, err := repo.Get(context.Background(), "non-existent")
	if err == nil {
		t.Error("expected error but got nil")
	}
	if !isErrorType(err, domain.ErrorTypeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestNatsMeetingRepository_GetWithRevision(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:   "meeting-123",
		Topic: "Quarterly Review",
	}

	meetingData, _ := json.Marshal(meeting)
	expectedRevision := uint64(42)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	kv.data = map[string][]byte{
		encodedKey: meetingData,
	}
	kv.revisions = map[string]uint64{
		encodedKey: expectedRevision,
	}

	result, revision, err := repo.GetWithRevision(context.Background(), meeting.UID)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if revision != expectedRevision {
		t.Errorf("expected revision %d, got %d", expectedRevision, revision)
	}
	if result.UID != meeting.UID {
		t.Errorf("expected UID %s, got %s", meeting.UID, result.UID)
	}
}

func TestNatsMeetingRepository_Update(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:    "meeting-123",
		Topic:  "Updated Topic",
		Status: models.MeetingStatusScheduled,
	}

	initialData, _ := json.Marshal(meeting)
	initialRevision := uint64(1)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	kv.data = map[string][]byte{
		encodedKey: initialData,
	}
	kv.revisions = map[string]uint64{
		encodedKey: initialRevision,
	}

	err := repo.Update(context.Background(), meeting, initialRevision)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if kv.revisions[encodedKey] != initialRevision+1 {
		t.Errorf("expected revision to be incremented to %d, got %d", initialRevision+1, kv.revisions[encodedKey])
	}
}

func TestNatsMeetingRepository_Update_RefreshesRemoteIndex(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	// Meeting created without a remote ID, then linked during sync
	meeting := &models.Meeting{
		UID:    "meeting-123",
		Topic:  "Quarterly Review",
		Status: models.MeetingStatusScheduled,
	}
	initialData, _ := json.Marshal(meeting)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	kv.data = map[string][]byte{
		encodedKey: initialData,
	}
	kv.revisions = map[string]uint64{
		encodedKey: 1,
	}

	meeting.RemoteID = "987654321"
	err := repo.Update(context.Background(), meeting, 1)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	indexKey, _ := encodeKey("index/remote/987654321")
	indexValue, exists := kv.data[indexKey]
	if !exists {
		t.Fatal("expected remote ID index to be created on update")
	}
	if string(indexValue) != meeting.UID {
		t.Errorf("expected index value %s, got %s", meeting.UID, string(indexValue))
	}
}

func TestNatsMeetingRepository_Update_RevisionMismatch(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:   "meeting-123",
		Topic: "Quarterly Review",
	}

	initialData, _ := json.Marshal(meeting)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	kv.data = map[string][]byte{
		encodedKey: initialData,
	}
	kv.revisions = map[string]uint64{
		encodedKey: 1,
	}

	err := repo.Update(context.Background(), meeting, 3)
	if err == nil {
		t.Error("expected error but got nil")
	}
	if !isErrorType(err, domain.ErrorTypeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestNatsMeetingRepository_Delete(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:      "meeting-123",
		RemoteID: "987654321",
		Topic:    "Quarterly Review",
	}

	meetingData, _ := json.Marshal(meeting)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	indexKey, _ := encodeKey(fmt.Sprintf("index/remote/%s", meeting.RemoteID))
	kv.data = map[string][]byte{
		encodedKey: meetingData,
		indexKey:   []byte(meeting.UID),
	}

	err := repo.Delete(context.Background(), meeting.UID, 1)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, exists := kv.data[encodedKey]; exists {
		t.Error("expected meeting to be deleted")
	}
	if _, exists := kv.data[indexKey]; exists {
		t.Error("expected remote ID index to be deleted")
	}
}

func TestNatsMeetingRepository_Delete_RevisionMismatch(t *testing.T) {
	kv := newMockNatsKeyValue()
	kv.deleteError = errors.New("wrong last sequence")
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:   "meeting-123",
		Topic: "Quarterly Review",
	}

	meetingData, _ := json.Marshal(meeting)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	kv.data = map[string][]byte{
		encodedKey: meetingData,
	}

	err := repo.Delete(context.Background(), meeting.UID, 3)
	if err == nil {
		t.Error("expected error but got nil")
	}
	if !isErrorType(err, domain.ErrorTypeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestNatsMeetingRepository_GetByRemoteID(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	meeting := &models.Meeting{
		UID:      "meeting-123",
		RemoteID: "987654321",
		Topic:    "Quarterly Review",
	}

	meetingData, _ := json.Marshal(meeting)
	encodedKey, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting.UID))
	indexKey, _ := encodeKey(fmt.Sprintf("index/remote/%s", meeting.RemoteID))
	kv.data = map[string][]byte{
		encodedKey: meetingData,
		indexKey:   []byte(meeting.UID),
	}

	result, err := repo.GetByRemoteID(context.Background(), meeting.RemoteID)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result.UID != meeting.UID {
		t.Errorf("expected UID %s, got %s", meeting.UID, result.UID)
	}
}

func TestNatsMeetingRepository_GetByRemoteID_NotFound(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	_, err := repo.GetByRemoteID(context.Background(), "111222333")
	if err == nil {
		t.Error("expected error but got nil")
	}
	if !isErrorType(err, domain.ErrorTypeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestNatsMeetingRepository_ListAll(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	now := time.Now()
	meeting1 := &models.Meeting{UID: "meeting-1", Topic: "Sprint Planning", CreatedAt: &now}
	meeting2 := &models.Meeting{UID: "meeting-2", Topic: "Retrospective", CreatedAt: &now}

	meeting1Data, _ := json.Marshal(meeting1)
	meeting2Data, _ := json.Marshal(meeting2)

	key1, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting1.UID))
	key2, _ := encodeKey(fmt.Sprintf("meeting/%s", meeting2.UID))
	// The remote index should not show up as a meeting
	indexKey, _ := encodeKey("index/remote/987654321")

	kv.data = map[string][]byte{
		key1:     meeting1Data,
		key2:     meeting2Data,
		indexKey: []byte("meeting-1"),
	}

	result, err := repo.ListAll(context.Background())
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("expected 2 meetings, got %d", len(result))
	}

	foundMeeting1 := false
	foundMeeting2 := false
	for _, meeting := range result {
		if meeting.UID == "meeting-1" && meeting.Topic == "Sprint Planning" {
			foundMeeting1 = true
		}
		if meeting.UID == "meeting-2" && meeting.Topic == "Retrospective" {
			foundMeeting2 = true
		}
	}
	if !foundMeeting1 {
		t.Error("expected to find meeting-1")
	}
	if !foundMeeting2 {
		t.Error("expected to find meeting-2")
	}
}

func TestNatsMeetingRepository_Exists(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsMeetingRepository(kv)

	exists, err := repo.Exists(context.Background(), "non-existent")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected meeting to not exist")
	}

	encodedKey, _ := encodeKey("meeting/existing-meeting")
	kv.data = map[string][]byte{
		encodedKey: []byte(`{"uid":"existing-meeting","topic":"Standup"}`),
	}

	exists, err = repo.Exists(context.Background(), "existing-meeting")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected meeting to exist")
	}
}
