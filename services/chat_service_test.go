package services

import (
	"log/slog"
	"sync"
	"testing"

	"duochat/domain"
	"duochat/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newChatService() *ChatService {
	return NewChatService(logs.GetLoggerFromLevel(slog.LevelDebug))
}

func Test_Create_Room(t *testing.T) {
	req := require.New(t)
	service := newChatService()

	// When alice creates a room
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)
	req.NotEmpty(info.ID)
	req.Equal("study", info.Name)
	req.Equal("alice", info.Owner)

	// Then she is its sole participant and owner
	summaries := service.List("alice")
	req.Len(summaries, 1)
	req.Equal([]string{"alice"}, summaries[0].Participants)
	req.True(summaries[0].IsOwner)
	req.False(summaries[0].IsFull)
}

func Test_Create_Room_Validation(t *testing.T) {
	req := require.New(t)
	service := newChatService()

	_, err := service.Create("alice", "   ", "pwd")
	req.ErrorIs(err, errors.ErrValidation)

	_, err = service.Create("alice", "study", "pw")
	req.ErrorIs(err, errors.ErrValidation)
}

func Test_Create_Trims_Room_Name(t *testing.T) {
	req := require.New(t)
	service := newChatService()

	info, err := service.Create("alice", "  study  ", "pwd")
	req.NoError(err)
	req.Equal("study", info.Name)
}

func Test_Join_Happy_Path(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)

	// When bob joins with the right password
	participants, err := service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	// Then both are participants and must receive the broadcast
	req.Equal([]string{"alice", "bob"}, participants)

	// And both now see the room as theirs
	for _, viewer := range []string{"alice", "bob"} {
		summaries := service.List(viewer)
		req.Len(summaries, 1)
		req.Equal([]string{"alice", "bob"}, summaries[0].Participants)
		req.False(summaries[0].IsFull)
	}
}

func Test_Join_Unknown_Room(t *testing.T) {
	req := require.New(t)
	service := newChatService()

	_, err := service.Join("no-such-id", "bob", "pwd")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Join_Wrong_Password(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)

	_, err = service.Join(info.ID, "bob", "nope")
	req.ErrorIs(err, errors.ErrForbidden)
}

func Test_Join_Is_Idempotent_For_Participant(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)

	// Given bob already joined
	first, err := service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	// When he joins again with the right password
	second, err := service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	// Then the participant set is unchanged
	req.Equal(first, second)
	req.Equal([]string{"alice", "bob"}, second)
}

func Test_Join_Full_Room_Rejects_Third_User(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)
	_, err = service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	// A third identity is rejected even with the correct password
	_, err = service.Join(info.ID, "carol", "pwd")
	req.ErrorIs(err, errors.ErrForbidden)

	// The owner can still rejoin idempotently
	participants, err := service.Join(info.ID, "alice", "pwd")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, participants)
}

func Test_Join_Race_On_Last_Slot(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)

	// When bob and carol race for the single free slot
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, user := range []string{"bob", "carol"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, results[i] = service.Join(info.ID, user, "pwd")
		}(i, user)
	}
	wg.Wait()

	// Then exactly one of them won the slot
	var successes, forbidden int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			req.ErrorIs(err, errors.ErrForbidden)
			forbidden++
		}
	}
	req.Equal(1, successes)
	req.Equal(1, forbidden)
}

func Test_Room_Invariants_Hold(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)
	_, err = service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	for _, viewer := range []string{"alice", "bob", "carol"} {
		for _, summary := range service.List(viewer) {
			req.GreaterOrEqual(len(summary.Participants), 1)
			req.LessOrEqual(len(summary.Participants), domain.MaxParticipants)
			req.Contains(summary.Participants, summary.Owner)
		}
	}
}

func Test_Delete_Room(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)
	_, err = service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	// A non-owner cannot delete
	_, err = service.Delete(info.ID, "bob")
	req.ErrorIs(err, errors.ErrForbidden)

	// The owner can; former members are returned for the broadcast
	former, err := service.Delete(info.ID, "alice")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, former)

	// The room is gone: joins and lookups fail as not found
	_, err = service.Join(info.ID, "bob", "pwd")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = service.Delete(info.ID, "alice")
	req.ErrorIs(err, errors.ErrNotFound)
	_, ok := service.MembershipOf(info.ID, "alice")
	req.False(ok)
}

func Test_List_Visibility_And_IsFull(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)

	// With a free slot, outsiders see the room as joinable
	summaries := service.List("carol")
	req.Len(summaries, 1)
	req.False(summaries[0].IsFull)
	req.False(summaries[0].IsOwner)

	_, err = service.Join(info.ID, "bob", "pwd")
	req.NoError(err)

	// Once full, outsiders no longer see it
	req.Empty(service.List("carol"))

	// Participants still do, and not as full
	req.Len(service.List("bob"), 1)
	req.False(service.List("bob")[0].IsFull)
}

func Test_List_Orders_Newest_First(t *testing.T) {
	req := require.New(t)
	service := newChatService()

	first, err := service.Create("alice", "first", "pwd")
	req.NoError(err)
	second, err := service.Create("alice", "second", "pwd")
	req.NoError(err)

	summaries := service.List("alice")
	req.Len(summaries, 2)
	req.Equal(second.ID, summaries[0].ID)
	req.Equal(first.ID, summaries[1].ID)
}

func Test_MembershipOf(t *testing.T) {
	req := require.New(t)
	service := newChatService()
	info, err := service.Create("alice", "study", "pwd")
	req.NoError(err)

	participants, ok := service.MembershipOf(info.ID, "alice")
	req.True(ok)
	req.Equal([]string{"alice"}, participants)

	// Non-members and unknown rooms look the same to the caller
	_, ok = service.MembershipOf(info.ID, "bob")
	req.False(ok)
	_, ok = service.MembershipOf("no-such-id", "alice")
	req.False(ok)
}
