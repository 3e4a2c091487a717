package identity

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// NewApp initializes the Firebase app shared by auth and Firestore. An empty
// credentials path falls back to application default credentials.
func NewApp(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}
	return app, nil
}

// FirebaseAuth verifies ID tokens and manages accounts with Firebase Auth
type FirebaseAuth struct {
	client *auth.Client
}

func NewFirebaseAuth(ctx context.Context, app *firebase.App) (*FirebaseAuth, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}
	return &FirebaseAuth{client: client}, nil
}

// Authenticate verifies an ID token and loads the full user record so the
// profile gets the creation time.
func (f *FirebaseAuth) Authenticate(ctx context.Context, idToken string) (*model.User, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	record, err := f.client.GetUser(ctx, token.UID)
	if err != nil {
		// the token alone still identifies the user
		u := &model.User{ID: token.UID}
		if email, ok := token.Claims["email"].(string); ok {
			u.Email = email
		}
		if name, ok := token.Claims["name"].(string); ok {
			u.DisplayName = name
		}
		if picture, ok := token.Claims["picture"].(string); ok {
			u.PhotoURL = picture
		}
		return u, nil
	}
	return userFromRecord(record), nil
}

func (f *FirebaseAuth) CreateUser(ctx context.Context, email, password, displayName string) (*model.User, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password).DisplayName(displayName)
	record, err := f.client.CreateUser(ctx, params)
	if auth.IsEmailAlreadyExists(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return userFromRecord(record), nil
}

func (f *FirebaseAuth) DeleteUser(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func userFromRecord(r *auth.UserRecord) *model.User {
	u := &model.User{
		ID:          r.UID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
	}
	if r.UserMetadata != nil && r.UserMetadata.CreationTimestamp > 0 {
		u.CreatedAt = time.UnixMilli(r.UserMetadata.CreationTimestamp)
	}
	return u
}
