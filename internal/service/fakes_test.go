package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"bookhub/internal/models"
	"bookhub/internal/repository"
)

// fakeStore is an in-memory stand-in for the postgres-backed repositories.
// It mirrors their contracts: gorm.ErrRecordNotFound on misses, the
// (book,user) uniqueness rule on review creation, newest-first ordering with
// id as the tie-break, and owner/author attachment where the real
// repositories preload.
type fakeStore struct {
	mu sync.Mutex

	users   map[string]models.User
	books   map[int64]*models.Book
	reviews map[int64]*models.Review

	nextBookID   int64
	nextReviewID int64
	clock        time.Time

	// when set, DeleteByBook fails with this error
	reviewCleanupErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]models.User),
		books:   make(map[int64]*models.Book),
		reviews: make(map[int64]*models.Review),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) addUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = models.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type fakeBookRepo struct {
	store *fakeStore
}

func (r *fakeBookRepo) Create(ctx context.Context, book *models.Book) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookID++
	book.ID = s.nextBookID
	if book.CreatedAt.IsZero() {
		book.CreatedAt = s.tick()
	}
	book.UpdatedAt = book.CreatedAt

	stored := *book
	stored.Owner = models.User{}
	s.books[book.ID] = &stored
	return nil
}

func (r *fakeBookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *b
	out.Owner = s.users[b.AddedByID]
	return &out, nil
}

func (r *fakeBookRepo) GetByUser(ctx context.Context, userID string) ([]models.Book, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Book
	for _, b := range s.books {
		if b.AddedByID == userID {
			list = append(list, *b)
		}
	}
	sortBooksNewestFirst(list)
	return list, nil
}

func (r *fakeBookRepo) GetPage(ctx context.Context, page, pageSize int) ([]models.Book, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		out := *b
		out.Owner = s.users[b.AddedByID]
		all = append(all, out)
	}
	sortBooksNewestFirst(all)

	total := int64(len(all))
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeBookRepo) Update(ctx context.Context, book *models.Book) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *book
	stored.Owner = models.User{}
	stored.UpdatedAt = s.tick()
	s.books[book.ID] = &stored
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, id)
	return nil
}

type fakeReviewRepo struct {
	store *fakeStore
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.BookID == review.BookID && existing.UserID == review.UserID {
			return repository.ErrDuplicateReview
		}
	}

	s.nextReviewID++
	review.ID = s.nextReviewID
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.tick()
	}
	review.UpdatedAt = review.CreatedAt

	stored := *review
	stored.User = models.User{}
	s.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rv, ok := s.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *rv
	out.User = s.users[rv.UserID]
	return &out, nil
}

func (r *fakeReviewRepo) GetByUser(ctx context.Context, userID string) ([]models.Review, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Review
	for _, rv := range s.reviews {
		if rv.UserID == userID {
			list = append(list, *rv)
		}
	}
	sortReviewsNewestFirst(list)
	return list, nil
}

func (r *fakeReviewRepo) GetByBook(ctx context.Context, bookID int64) ([]models.Review, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Review
	for _, rv := range s.reviews {
		if rv.BookID == bookID {
			out := *rv
			out.User = s.users[rv.UserID]
			list = append(list, out)
		}
	}
	sortReviewsNewestFirst(list)
	return list, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *models.Review) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *review
	stored.User = models.User{}
	stored.UpdatedAt = s.tick()
	s.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
	return nil
}

func (r *fakeReviewRepo) DeleteByBook(ctx context.Context, bookID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reviewCleanupErr != nil {
		return s.reviewCleanupErr
	}
	for id, rv := range s.reviews {
		if rv.BookID == bookID {
			delete(s.reviews, id)
		}
	}
	return nil
}

func (r *fakeReviewRepo) AverageForBook(ctx context.Context, bookID int64) (float64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, count := 0, 0
	for _, rv := range s.reviews {
		if rv.BookID == bookID {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}

func (r *fakeReviewRepo) AverageForBooks(ctx context.Context, bookIDs []int64) (map[int64]float64, error) {
	averages := make(map[int64]float64, len(bookIDs))
	for _, id := range bookIDs {
		avg, _ := r.AverageForBook(ctx, id)
		if avg > 0 {
			averages[id] = avg
		}
	}
	return averages, nil
}

func sortBooksNewestFirst(list []models.Book) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

func sortReviewsNewestFirst(list []models.Review) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// fakeUserRepo backs the auth service tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeTokenStore keeps refresh tokens in a map; TTLs are ignored.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (s *fakeTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *fakeTokenStore) Lookup(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	return userID, nil
}

func (s *fakeTokenStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
