package tour

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourly/database/memdb"
	tourRepo "tourly/database/repository/tour"
	"tourly/models"
	"tourly/utils"
)

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	args := m.Called(ctx, file, folder)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) DeleteImage(ctx context.Context, imageURL string) error {
	args := m.Called(ctx, imageURL)
	return args.Error(0)
}

var (
	guide    = &models.UserIdentity{UID: "guide-1", DisplayName: "Rita", Role: models.RoleGuide}
	intruder = &models.UserIdentity{UID: "guide-2", Role: models.RoleGuide}
)

func validInput() models.TourInput {
	return models.TourInput{
		Title:           "Alfama by night",
		City:            "Lisbon",
		Category:        "walking",
		Price:           35,
		DurationMinutes: 90,
		Itinerary:       []models.ItineraryStep{{Title: "Miradouro"}},
	}
}

func newService(t *testing.T) (*DefaultTourService, *miniredis.Miniredis, *MockImageStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	images := &MockImageStore{}
	svc := NewDefaultTourService(tourRepo.NewMemoryTourRepo(memdb.New()), utils.NewCache(client), images, time.Minute, nil)
	return svc, mr, images
}

func TestCreateTourValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*models.TourInput)
		field string
	}{
		{"missing title", func(in *models.TourInput) { in.Title = " " }, "title"},
		{"missing city", func(in *models.TourInput) { in.City = "" }, "city"},
		{"negative price", func(in *models.TourInput) { in.Price = -1 }, "price"},
		{"zero duration", func(in *models.TourInput) { in.DurationMinutes = 0 }, "durationMinutes"},
		{"unnamed itinerary step", func(in *models.TourInput) { in.Itinerary = []models.ItineraryStep{{}} }, "itinerary[0].title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			_, err := svc.CreateTour(ctx, guide, in)
			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, err := svc.CreateTour(ctx, &models.UserIdentity{UID: "u1", Role: models.RoleTourist}, validInput())
	assert.ErrorIs(t, err, ErrNotGuide)
}

func TestCreateTourAllowsFreeTours(t *testing.T) {
	svc, _, _ := newService(t)
	in := validInput()
	in.Price = 0

	created, err := svc.CreateTour(context.Background(), guide, in)

	require.NoError(t, err)
	assert.Zero(t, created.Price)
	assert.True(t, created.Active)
	assert.Equal(t, "guide-1", created.GuideID)
	assert.Equal(t, "Rita", created.GuideName)
}

func TestListToursIsCachedAndInvalidated(t *testing.T) {
	svc, mr, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateTour(ctx, guide, validInput())
	require.NoError(t, err)

	list, err := svc.ListTours(ctx, models.TourFilter{City: "Lisbon"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, mr.Exists(listKey(models.TourFilter{City: "Lisbon"})))

	_, err = svc.SetTourActive(ctx, guide, created.ID, false)
	require.NoError(t, err)
	assert.False(t, mr.Exists(listKey(models.TourFilter{City: "Lisbon"})))

	list, err = svc.ListTours(ctx, models.TourFilter{City: "Lisbon"})
	require.NoError(t, err)
	assert.Empty(t, list)

	// hidden from listings, still readable by id
	got, err := svc.GetTour(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestGetTourServesFromCache(t *testing.T) {
	svc, mr, _ := newService(t)
	ctx := context.Background()
	created, err := svc.CreateTour(ctx, guide, validInput())
	require.NoError(t, err)

	_, err = svc.GetTour(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(itemKey(created.ID)))

	require.NoError(t, mr.Set(itemKey(created.ID), `{"id":"`+created.ID+`","title":"from cache"}`))
	got, err := svc.GetTour(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "from cache", got.Title)

	_, err = svc.GetTour(ctx, "missing")
	assert.ErrorIs(t, err, ErrTourNotFound)
}

func TestListToursWithoutRedis(t *testing.T) {
	svc := NewDefaultTourService(tourRepo.NewMemoryTourRepo(memdb.New()), nil, nil, time.Minute, nil)
	ctx := context.Background()
	_, err := svc.CreateTour(ctx, guide, validInput())
	require.NoError(t, err)

	list, err := svc.ListTours(ctx, models.TourFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateTourOwnership(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	created, err := svc.CreateTour(ctx, guide, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Alfama at dawn"
	_, err = svc.UpdateTour(ctx, intruder, created.ID, in)
	assert.ErrorIs(t, err, ErrNotTourOwner)

	updated, err := svc.UpdateTour(ctx, guide, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Alfama at dawn", updated.Title)

	_, err = svc.UpdateTour(ctx, guide, "missing", in)
	assert.ErrorIs(t, err, ErrTourNotFound)

	mine, err := svc.ListGuideTours(ctx, guide)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alfama at dawn", mine[0].Title)
}

func TestTourImages(t *testing.T) {
	svc, _, images := newService(t)
	ctx := context.Background()
	created, err := svc.CreateTour(ctx, guide, validInput())
	require.NoError(t, err)

	const url = "https://res.cloudinary.com/demo/image/upload/v1/tours/x/photo.jpg"
	body := bytes.NewBufferString("jpeg bytes")
	images.On("UploadImage", mock.Anything, body, "tours/"+created.ID).Return(url, nil).Once()
	images.On("DeleteImage", mock.Anything, url).Return(errors.New("cloud down")).Once()

	withImage, err := svc.AddTourImage(ctx, guide, created.ID, body)
	require.NoError(t, err)
	assert.Equal(t, []string{url}, withImage.Images)

	_, err = svc.RemoveTourImage(ctx, guide, created.ID, "https://elsewhere/none.jpg")
	var verr ValidationError
	assert.True(t, errors.As(err, &verr))

	withoutImage, err := svc.RemoveTourImage(ctx, guide, created.ID, url)
	require.NoError(t, err)
	assert.Empty(t, withoutImage.Images)

	images.AssertExpectations(t)
}

func TestAddTourImageWithoutStore(t *testing.T) {
	svc := NewDefaultTourService(tourRepo.NewMemoryTourRepo(memdb.New()), nil, nil, time.Minute, nil)
	_, err := svc.AddTourImage(context.Background(), guide, "any", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrImageStoreDisabled)
}

func TestListKeyKeepsFiltersApart(t *testing.T) {
	assert.NotEqual(t,
		listKey(models.TourFilter{City: "a:b"}),
		listKey(models.TourFilter{City: "a", Category: "b:"}),
	)

	svc, _, _ := newService(t)
	ctx := context.Background()
	in := validInput()
	in.City = "a:b"
	_, err := svc.CreateTour(ctx, guide, in)
	require.NoError(t, err)

	warm, err := svc.ListTours(ctx, models.TourFilter{City: "a:b"})
	require.NoError(t, err)
	require.Len(t, warm, 1)

	other, err := svc.ListTours(ctx, models.TourFilter{City: "a", Category: "b:"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

// racingTourRepo lets another writer update the tour right before the first write lands.
type racingTourRepo struct {
	tourRepo.TourRepository
	raced   bool
	updates int
}

func (r *racingTourRepo) Update(ctx context.Context, t *models.Tour) error {
	r.updates++
	if !r.raced {
		r.raced = true
		other, err := r.TourRepository.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}
		other.Images = append(other.Images, "https://res.cloudinary.com/demo/image/upload/v1/other.jpg")
		if err := r.TourRepository.Update(ctx, other); err != nil {
			return err
		}
	}
	return r.TourRepository.Update(ctx, t)
}

func TestAddTourImageSurvivesConcurrentWrite(t *testing.T) {
	svc, _, images := newService(t)
	ctx := context.Background()
	created, err := svc.CreateTour(ctx, guide, validInput())
	require.NoError(t, err)
	racing := &racingTourRepo{TourRepository: svc.Repo}
	svc.Repo = racing

	const url = "https://res.cloudinary.com/demo/image/upload/v1/tours/x/mine.jpg"
	images.On("UploadImage", mock.Anything, mock.Anything, "tours/"+created.ID).Return(url, nil).Once()

	got, err := svc.AddTourImage(ctx, guide, created.ID, strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, 2, racing.updates)
	assert.Equal(t, []string{"https://res.cloudinary.com/demo/image/upload/v1/other.jpg", url}, got.Images)

	stored, err := svc.GetTour(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Images, 2)
	assert.Equal(t, 2, stored.Version)
	images.AssertExpectations(t)
}
