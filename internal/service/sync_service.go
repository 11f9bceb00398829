// Copyright The CRM Suite Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crmsuite/zoom-sync-service/internal/domain"
	"github.com/crmsuite/zoom-sync-service/internal/domain/models"
	"github.com/crmsuite/zoom-sync-service/internal/logging"
	"github.com/crmsuite/zoom-sync-service/internal/metrics"
	"github.com/crmsuite/zoom-sync-service/pkg/concurrent"
)

// syncWorkerCount bounds how many meetings are enriched concurrently.
const syncWorkerCount = 5

// SyncService is the reconciliation engine. It pulls the remote meeting
// list, converges local records onto the remote state, and enriches
// running or finished meetings with participant and recording data.
type SyncService struct {
	MeetingRepository  domain.MeetingRepository
	AttendeeRepository domain.AttendeeRepository
	Gateway            domain.MeetingGateway
	MessageSender      domain.MessageSender
	Credentials        *CredentialService
	Config             ServiceConfig

	pool     *concurrent.WorkerPool
	inFlight atomic.Bool
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	meetingRepository domain.MeetingRepository,
	attendeeRepository domain.AttendeeRepository,
	gateway domain.MeetingGateway,
	messageSender domain.MessageSender,
	credentials *CredentialService,
	config ServiceConfig,
) *SyncService {
	return &SyncService{
		MeetingRepository:  meetingRepository,
		AttendeeRepository: attendeeRepository,
		Gateway:            gateway,
		MessageSender:      messageSender,
		Credentials:        credentials,
		Config:             config,
		pool:               concurrent.NewWorkerPool(syncWorkerCount),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SyncService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AttendeeRepository != nil &&
		s.Gateway != nil &&
		s.MessageSender != nil &&
		s.Credentials != nil
}

// PullSync runs one reconciliation pass. Only one pass runs at a time; a
// second caller gets a conflict instead of a second pass.
func (s *SyncService) PullSync(ctx context.Context) (*models.SyncResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, domain.NewConflictError("a sync run is already in progress")
	}
	defer s.inFlight.Store(false)

	startedAt := time.Now().UTC()
	result, err := s.pullSync(ctx)
	finishedAt := time.Now().UTC()

	metrics.RecordSyncRun(err == nil, finishedAt.Sub(startedAt).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.RecordSyncOutcome("created", result.Created)
	metrics.RecordSyncOutcome("updated", result.Updated)
	metrics.RecordSyncOutcome("unchanged", result.Unchanged)
	metrics.RecordSyncOutcome("enriched", result.Enriched)
	metrics.RecordSyncOutcome("conflict", result.Conflicts)
	metrics.RecordSyncOutcome("failed", result.Failed)

	if sendErr := s.MessageSender.SendSyncCompleted(ctx, models.SyncEventMessage{
		Result:     *result,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}); sendErr != nil {
		slog.ErrorContext(ctx, "failed to publish sync completion event", logging.ErrKey, sendErr)
	}

	slog.InfoContext(ctx, "sync run finished",
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"enriched", result.Enriched,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
		"duration", finishedAt.Sub(startedAt).String(),
	)

	return result, nil
}

func (s *SyncService) pullSync(ctx context.Context) (*models.SyncResult, error) {
	remotes, err := s.Gateway.ListMeetings(ctx)
	metrics.RecordZoomAPICall("list_meetings", err == nil)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeAuthentication {
			s.Credentials.MarkConnectionError(ctx, err)
		}
		return nil, err
	}

	locals, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byRemoteID := make(map[string]*models.Meeting, len(locals))
	for _, local := range locals {
		if local.RemoteID != "" {
			byRemoteID[local.RemoteID] = local
		}
	}

	result := &models.SyncResult{}
	now := time.Now().UTC()

	for _, remote := range remotes {
		local, ok := byRemoteID[remote.ID]
		if !ok {
			if err := s.createFromRemote(ctx, remote, now); err != nil {
				slog.ErrorContext(ctx, "failed to create meeting from remote", "remote_id", remote.ID, logging.ErrKey, err)
				result.Failed++
				continue
			}
			result.Created++
			continue
		}

		switch s.applyDrift(ctx, local.UID, remote, now) {
		case driftUpdated:
			result.Updated++
		case driftUnchanged:
			result.Unchanged++
		case driftConflict:
			result.Conflicts++
		case driftFailed:
			result.Failed++
		}
	}

	s.enrich(ctx, result)

	return result, nil
}

// createFromRemote materializes a local record for a meeting that exists
// only on the platform.
func (s *SyncService) createFromRemote(ctx context.Context, remote *models.RemoteMeeting, now time.Time) error {
	status := models.MeetingStatusScheduled
	if mapped, ok := models.StatusFromRemote(remote.Status); ok {
		status = mapped
	}

	meeting := &models.Meeting{
		RemoteID:     remote.ID,
		RemoteUUID:   remote.UUID,
		Topic:        remote.Topic,
		Agenda:       remote.Agenda,
		Type:         remote.Type,
		StartTime:    remote.StartTime,
		Duration:     remote.Duration,
		Timezone:     remote.Timezone,
		Status:       status,
		HostEmail:    remote.HostEmail,
		JoinURL:      remote.JoinURL,
		StartURL:     remote.StartURL,
		Password:     remote.Password,
		Settings:     remote.Settings,
		LastSyncedAt: &now,
	}

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		return err
	}

	if err := s.MessageSender.SendMeetingCreated(ctx, models.MeetingEventMessage{
		MeetingUID: meeting.UID,
		RemoteID:   meeting.RemoteID,
		Topic:      meeting.Topic,
		Status:     meeting.Status,
		OccurredAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish meeting event", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "created meeting from remote", "meeting_uid", meeting.UID, "remote_id", meeting.RemoteID)

	return nil
}

type driftOutcome int

const (
	driftUnchanged driftOutcome = iota
	driftUpdated
	driftConflict
	driftFailed
)

// applyDrift converges the drift fields of one local meeting onto the
// remote snapshot. Local-only fields are never touched, and a no-drift
// snapshot writes nothing.
func (s *SyncService) applyDrift(ctx context.Context, meetingUID string, remote *models.RemoteMeeting, now time.Time) driftOutcome {
	local, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load meeting for drift check", "meeting_uid", meetingUID, logging.ErrKey, err)
		return driftFailed
	}

	drifted := false
	var prevStatus models.MeetingStatus
	statusChanged := false
	if remote.Topic != "" && remote.Topic != local.Topic {
		local.Topic = remote.Topic
		drifted = true
	}
	if !remote.StartTime.IsZero() && !remote.StartTime.Equal(local.StartTime) {
		local.StartTime = remote.StartTime
		drifted = true
	}
	if remote.Duration > 0 && remote.Duration != local.Duration {
		local.Duration = remote.Duration
		drifted = true
	}
	if remote.JoinURL != "" && remote.JoinURL != local.JoinURL {
		local.JoinURL = remote.JoinURL
		drifted = true
	}
	if remote.Status != "" {
		if mapped, ok := models.StatusFromRemote(remote.Status); ok {
			if mapped != local.Status {
				prevStatus = local.Status
				local.Status = mapped
				drifted = true
				statusChanged = true
			}
		} else {
			slog.WarnContext(ctx, "unknown remote meeting status",
				"meeting_uid", meetingUID,
				"remote_status", remote.Status,
			)
		}
	}

	if !drifted {
		return driftUnchanged
	}

	local.LastSyncedAt = &now
	if err := s.MeetingRepository.Update(ctx, local, revision); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.WarnContext(ctx, "concurrent write during sync, leaving meeting alone", "meeting_uid", meetingUID)
			return driftConflict
		}
		slog.ErrorContext(ctx, "failed to update meeting from remote", "meeting_uid", meetingUID, logging.ErrKey, err)
		return driftFailed
	}

	if statusChanged {
		s.publishStateChange(ctx, local, prevStatus, now)
	}

	return driftUpdated
}

func (s *SyncService) publishStateChange(ctx context.Context, meeting *models.Meeting, prev models.MeetingStatus, now time.Time) {
	if err := s.MessageSender.SendMeetingStateChanged(ctx, models.MeetingEventMessage{
		MeetingUID: meeting.UID,
		RemoteID:   meeting.RemoteID,
		Topic:      meeting.Topic,
		Status:     meeting.Status,
		PrevStatus: prev,
		OccurredAt: now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish meeting event", logging.ErrKey, err)
	}
}

// enrich pulls participant and recording data for linked meetings that are
// running or already over but not yet enriched. Each meeting is isolated:
// one failure neither cancels the others nor the run.
func (s *SyncService) enrich(ctx context.Context, result *models.SyncResult) {
	locals, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list meetings for enrichment", logging.ErrKey, err)
		return
	}

	var candidates []*models.Meeting
	for _, local := range locals {
		if !local.IsLinked() {
			continue
		}
		if local.Status != models.MeetingStatusActive && local.Status != models.MeetingStatusFinished {
			continue
		}
		if local.ActualEnd != nil && local.RecordingURL != "" {
			continue
		}
		candidates = append(candidates, local)
	}
	if len(candidates) == 0 {
		return
	}

	var mu sync.Mutex
	jobs := make([]func() error, 0, len(candidates))
	for _, meeting := range candidates {
		jobs = append(jobs, func() error {
			enriched, err := s.enrichMeeting(ctx, meeting.UID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				return err
			}
			if enriched {
				result.Enriched++
			}
			return nil
		})
	}

	for _, err := range s.pool.RunAll(ctx, jobs...) {
		slog.ErrorContext(ctx, "meeting enrichment failed", logging.ErrKey, err)
	}
}

// enrichMeeting fetches the participant report and recordings of one
// meeting and folds them into the local records. Missing report data means
// the platform has nothing yet, not an error.
func (s *SyncService) enrichMeeting(ctx context.Context, meetingUID string) (bool, error) {
	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return false, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	participants, err := s.Gateway.GetParticipants(ctx, meeting.RemoteID)
	metrics.RecordZoomAPICall("get_participants", err == nil || domain.GetErrorType(err) == domain.ErrorTypeNotFound)
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			return false, err
		}
		participants = nil
	}

	changed := false
	if len(participants) > 0 {
		if s.matchParticipants(ctx, meeting, participants) {
			changed = true
		}
		if s.applyActualTimes(meeting, participants) {
			changed = true
		}
	}

	recording, err := s.Gateway.GetRecordings(ctx, meeting.RemoteID)
	metrics.RecordZoomAPICall("get_recordings", err == nil || domain.GetErrorType(err) == domain.ErrorTypeNotFound)
	if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return false, err
	}
	if recording != nil {
		if recording.ShareURL != "" && recording.ShareURL != meeting.RecordingURL {
			meeting.RecordingURL = recording.ShareURL
			changed = true
		}
		if recording.PlayURL != "" && recording.PlayURL != meeting.RecordingPlayURL {
			meeting.RecordingPlayURL = recording.PlayURL
			changed = true
		}
	}

	if !changed {
		return false, nil
	}

	now := time.Now().UTC()
	meeting.LastSyncedAt = &now
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return false, err
	}

	slog.InfoContext(ctx, "enriched meeting",
		"participants", len(participants),
		"has_recording", meeting.RecordingURL != "",
	)

	return true, nil
}

// matchParticipants matches the participant report against the attendee
// list by email and marks confirmed attendees attended with their actual
// session times.
func (s *SyncService) matchParticipants(ctx context.Context, meeting *models.Meeting, participants []*models.RemoteParticipant) bool {
	attendees, err := s.AttendeeRepository.ListByMeeting(ctx, meeting.UID)
	if err != nil {
		slog.WarnContext(ctx, "failed to list attendees for participant matching", logging.ErrKey, err)
		return false
	}

	byEmail := make(map[string]*models.Attendee, len(attendees))
	for _, attendee := range attendees {
		byEmail[strings.ToLower(attendee.Email)] = attendee
	}

	changed := false
	for _, participant := range participants {
		if participant.Email == "" {
			continue
		}
		attendee, ok := byEmail[strings.ToLower(participant.Email)]
		if !ok || !attendee.CanTransitionTo(models.AttendeeStatusAttended) {
			continue
		}

		current, attendeeRevision, err := s.AttendeeRepository.GetWithRevision(ctx, attendee.UID)
		if err != nil {
			slog.WarnContext(ctx, "failed to load attendee for matching", "attendee_uid", attendee.UID, logging.ErrKey, err)
			continue
		}
		if !current.CanTransitionTo(models.AttendeeStatusAttended) {
			continue
		}

		current.Status = models.AttendeeStatusAttended
		if !participant.JoinTime.IsZero() {
			joinTime := participant.JoinTime
			current.JoinedAt = &joinTime
		}
		if !participant.LeaveTime.IsZero() {
			leaveTime := participant.LeaveTime
			current.LeftAt = &leaveTime
		}
		if participant.Duration > 0 {
			current.DurationMinutes = (participant.Duration + 59) / 60
		}

		if err := s.AttendeeRepository.Update(ctx, current, attendeeRevision); err != nil {
			slog.WarnContext(ctx, "failed to mark attendee attended", "attendee_uid", attendee.UID, logging.ErrKey, err)
			continue
		}
		changed = true
	}

	return changed
}

// applyActualTimes derives the actual meeting window from the earliest
// join and latest leave in the participant report.
func (s *SyncService) applyActualTimes(meeting *models.Meeting, participants []*models.RemoteParticipant) bool {
	var first, last time.Time
	for _, participant := range participants {
		if !participant.JoinTime.IsZero() && (first.IsZero() || participant.JoinTime.Before(first)) {
			first = participant.JoinTime
		}
		if participant.LeaveTime.After(last) {
			last = participant.LeaveTime
		}
	}

	changed := false
	if !first.IsZero() && meeting.ActualStart == nil {
		meeting.ActualStart = &first
		changed = true
	}
	if !last.IsZero() && meeting.ActualEnd == nil && meeting.Status == models.MeetingStatusFinished {
		meeting.ActualEnd = &last
		changed = true
	}
	if meeting.ActualStart != nil && meeting.ActualEnd != nil {
		minutes := int(meeting.ActualEnd.Sub(*meeting.ActualStart).Round(time.Minute) / time.Minute)
		if minutes > 0 && minutes != meeting.Duration {
			meeting.Duration = minutes
			changed = true
		}
	}

	return changed
}
