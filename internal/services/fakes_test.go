package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/repository"
)

// In-memory repositories backing the service tests. They mirror the store
// semantics the Mongo implementations rely on: conditional set mutations
// report whether the document changed, lookups return the package sentinels.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.Followers = []primitive.ObjectID{}
	u.Following = []primitive.ObjectID{}
	u.Recipes = []primitive.ObjectID{}
	u.SavedRecipes = []primitive.ObjectID{}
	u.Comments = []primitive.ObjectID{}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int64) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && (existing.Email == u.Email || existing.Username == u.Username) {
			return repository.ErrDuplicateKey
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = changedAt
	u.PasswordResetToken = ""
	u.PasswordResetExpires = time.Time{}
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordResetToken = tokenHash
	u.PasswordResetExpires = expires
	return nil
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.findBy(func(u *models.User) bool {
		return u.PasswordResetToken != "" && u.PasswordResetToken == tokenHash && u.PasswordResetExpires.After(now)
	})
}

func (r *fakeUserRepo) Deactivate(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Active = false
	return nil
}

func addToSet(set *[]primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range *set {
		if v == id {
			return false
		}
	}
	*set = append(*set, id)
	return true
}

func pullFromSet(set *[]primitive.ObjectID, id primitive.ObjectID) bool {
	for i, v := range *set {
		if v == id {
			*set = append((*set)[:i], (*set)[i+1:]...)
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) userSetOp(id primitive.ObjectID, op func(*models.User) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, repository.ErrUserNotFound
	}
	return op(u), nil
}

func (r *fakeUserRepo) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return r.userSetOp(userID, func(u *models.User) bool { return addToSet(&u.Following, targetID) })
}

func (r *fakeUserRepo) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return r.userSetOp(userID, func(u *models.User) bool { return pullFromSet(&u.Following, targetID) })
}

func (r *fakeUserRepo) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return r.userSetOp(userID, func(u *models.User) bool { return addToSet(&u.Followers, followerID) })
}

func (r *fakeUserRepo) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return r.userSetOp(userID, func(u *models.User) bool { return pullFromSet(&u.Followers, followerID) })
}

func (r *fakeUserRepo) AddSavedRecipe(_ context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	return r.userSetOp(userID, func(u *models.User) bool { return addToSet(&u.SavedRecipes, recipeID) })
}

func (r *fakeUserRepo) RemoveSavedRecipe(_ context.Context, userID, recipeID primitive.ObjectID) (bool, error) {
	return r.userSetOp(userID, func(u *models.User) bool { return pullFromSet(&u.SavedRecipes, recipeID) })
}

func (r *fakeUserRepo) AddRecipeRef(_ context.Context, userID, recipeID primitive.ObjectID) error {
	_, err := r.userSetOp(userID, func(u *models.User) bool { return addToSet(&u.Recipes, recipeID) })
	return err
}

func (r *fakeUserRepo) RemoveRecipeRef(_ context.Context, userID, recipeID primitive.ObjectID) error {
	_, err := r.userSetOp(userID, func(u *models.User) bool { return pullFromSet(&u.Recipes, recipeID) })
	return err
}

func (r *fakeUserRepo) AddCommentRef(_ context.Context, userID, commentID primitive.ObjectID) error {
	_, err := r.userSetOp(userID, func(u *models.User) bool { return addToSet(&u.Comments, commentID) })
	return err
}

func (r *fakeUserRepo) RemoveCommentRef(_ context.Context, userID, commentID primitive.ObjectID) error {
	_, err := r.userSetOp(userID, func(u *models.User) bool { return pullFromSet(&u.Comments, commentID) })
	return err
}

func (r *fakeUserRepo) PullRecipeRefs(_ context.Context, recipeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		pullFromSet(&u.Recipes, recipeID)
		pullFromSet(&u.SavedRecipes, recipeID)
	}
	return nil
}

type fakeRecipeRepo struct {
	mu      sync.Mutex
	recipes map[primitive.ObjectID]*models.Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[primitive.ObjectID]*models.Recipe)}
}

func (r *fakeRecipeRepo) Insert(_ context.Context, rec *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = primitive.NewObjectID()
	rec.CreatedAt = time.Now().UTC()
	if rec.Likes == nil {
		rec.Likes = []primitive.ObjectID{}
	}
	if rec.Comments == nil {
		rec.Comments = []primitive.ObjectID{}
	}
	if rec.Ratings == nil {
		rec.Ratings = []models.Rating{}
	}
	r.recipes[rec.ID] = rec
	return nil
}

func (r *fakeRecipeRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok {
		return nil, repository.ErrRecipeNotFound
	}
	return rec, nil
}

func (r *fakeRecipeRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Recipe
	for _, id := range ids {
		if rec, ok := r.recipes[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecipeRepo) FindByAuthor(_ context.Context, author primitive.ObjectID) ([]*models.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Recipe
	for _, rec := range r.recipes {
		if rec.Author == author {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecipeRepo) List(_ context.Context, _, _ int64) ([]*models.Recipe, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Recipe
	for _, rec := range r.recipes {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRecipeRepo) Update(_ context.Context, rec *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[rec.ID]; !ok {
		return repository.ErrRecipeNotFound
	}
	r.recipes[rec.ID] = rec
	return nil
}

func (r *fakeRecipeRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[id]; !ok {
		return repository.ErrRecipeNotFound
	}
	delete(r.recipes, id)
	return nil
}

func (r *fakeRecipeRepo) recipeSetOp(id primitive.ObjectID, op func(*models.Recipe) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok {
		return false, repository.ErrRecipeNotFound
	}
	return op(rec), nil
}

func (r *fakeRecipeRepo) AddLike(_ context.Context, recipeID, userID primitive.ObjectID) (bool, error) {
	return r.recipeSetOp(recipeID, func(rec *models.Recipe) bool { return addToSet(&rec.Likes, userID) })
}

func (r *fakeRecipeRepo) RemoveLike(_ context.Context, recipeID, userID primitive.ObjectID) (bool, error) {
	return r.recipeSetOp(recipeID, func(rec *models.Recipe) bool { return pullFromSet(&rec.Likes, userID) })
}

func (r *fakeRecipeRepo) AttachComment(_ context.Context, recipeID, commentID primitive.ObjectID) error {
	_, err := r.recipeSetOp(recipeID, func(rec *models.Recipe) bool { return addToSet(&rec.Comments, commentID) })
	return err
}

func (r *fakeRecipeRepo) DetachComment(_ context.Context, recipeID, commentID primitive.ObjectID) error {
	_, err := r.recipeSetOp(recipeID, func(rec *models.Recipe) bool { return pullFromSet(&rec.Comments, commentID) })
	return err
}

func (r *fakeRecipeRepo) UpdateRating(_ context.Context, recipeID primitive.ObjectID, rating models.Rating) (bool, error) {
	return r.recipeSetOp(recipeID, func(rec *models.Recipe) bool {
		for i, rt := range rec.Ratings {
			if rt.UserID == rating.UserID {
				rec.Ratings[i] = rating
				return true
			}
		}
		return false
	})
}

func (r *fakeRecipeRepo) PushRating(_ context.Context, recipeID primitive.ObjectID, rating models.Rating) (bool, error) {
	return r.recipeSetOp(recipeID, func(rec *models.Recipe) bool {
		for _, rt := range rec.Ratings {
			if rt.UserID == rating.UserID {
				return false
			}
		}
		rec.Ratings = append(rec.Ratings, rating)
		return true
	})
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (r *fakeCommentRepo) Insert(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	r.comments[c.ID] = c
	return nil
}

func (r *fakeCommentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	return c, nil
}

func (r *fakeCommentRepo) FindByRecipe(_ context.Context, recipeID primitive.ObjectID) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		if c.Recipe == recipeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Update(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[c.ID]; !ok {
		return repository.ErrCommentNotFound
	}
	r.comments[c.ID] = c
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) DeleteByRecipe(_ context.Context, recipeID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.Recipe == recipeID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) AddLike(_ context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return false, repository.ErrCommentNotFound
	}
	return addToSet(&c.Likes, userID), nil
}

func (r *fakeCommentRepo) RemoveLike(_ context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return false, repository.ErrCommentNotFound
	}
	return pullFromSet(&c.Likes, userID), nil
}

type fakeMealPlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*models.MealPlan
}

func newFakeMealPlanRepo() *fakeMealPlanRepo {
	return &fakeMealPlanRepo{plans: make(map[primitive.ObjectID]*models.MealPlan)}
}

func (r *fakeMealPlanRepo) Upsert(_ context.Context, p *models.MealPlan) (*models.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.plans {
		if existing.User == p.User && existing.WeekStartDate.Equal(p.WeekStartDate) {
			existing.Meals = p.Meals
			existing.UpdatedAt = time.Now().UTC()
			return existing, nil
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	r.plans[p.ID] = p
	return p, nil
}

func (r *fakeMealPlanRepo) FindByUser(_ context.Context, userID primitive.ObjectID, week *time.Time) ([]*models.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MealPlan
	for _, p := range r.plans {
		if p.User != userID {
			continue
		}
		if week != nil && !p.WeekStartDate.Equal(*week) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeMealPlanRepo) PullRecipe(_ context.Context, recipeID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		for i := range p.Meals {
			day := &p.Meals[i]
			if day.Breakfast != nil && *day.Breakfast == recipeID {
				day.Breakfast = nil
			}
			if day.Lunch != nil && *day.Lunch == recipeID {
				day.Lunch = nil
			}
			if day.Dinner != nil && *day.Dinner == recipeID {
				day.Dinner = nil
			}
			pullFromSet(&day.Snacks, recipeID)
		}
	}
	return nil
}

// fakeMailChannel records deliveries and optionally fails them.
type fakeMailChannel struct {
	mu      sync.Mutex
	sent    []string
	failErr error
}

func (m *fakeMailChannel) SendPasswordReset(_ context.Context, toEmail, _, ticket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, toEmail+":"+ticket)
	return nil
}

func (m *fakeMailChannel) lastTicket() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	last := m.sent[len(m.sent)-1]
	for i := range last {
		if last[i] == ':' {
			return last[i+1:]
		}
	}
	return ""
}

var errMailDown = errors.New("mail provider unavailable")
