package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/internal/infra/database"
)

type issueDocument struct {
	ID               string              `bson:"_id"`
	Title            string              `bson:"title"`
	Description      string              `bson:"description"`
	Category         string              `bson:"category"`
	Severity         string              `bson:"severity,omitempty"`
	Status           string              `bson:"status"`
	ModerationStatus string              `bson:"moderationStatus"`
	Location         domain.Location     `bson:"location"`
	AuthorID         string              `bson:"authorId"`
	AuthorName       string              `bson:"authorName"`
	AuthorAvatar     string              `bson:"authorAvatar,omitempty"`
	IsAnonymous      bool                `bson:"isAnonymous"`
	AIAnalysis       string              `bson:"aiAnalysis,omitempty"`
	Attachments      []domain.Attachment `bson:"attachments"`
	Comments         []domain.Comment    `bson:"comments"`
	SupportedBy      []string            `bson:"supportedBy"`
	FlaggedBy        []string            `bson:"flaggedBy"`
	Votes            int                 `bson:"votes"`
	CreatedAt        time.Time           `bson:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt"`
}

func newIssueDocument(issue domain.Issue) issueDocument {
	issue = issue.Clone()
	return issueDocument{
		ID:               issue.ID,
		Title:            issue.Title,
		Description:      issue.Description,
		Category:         string(issue.Category),
		Severity:         string(issue.Severity),
		Status:           string(issue.Status),
		ModerationStatus: string(issue.ModerationStatus),
		Location:         issue.Location,
		AuthorID:         issue.AuthorID,
		AuthorName:       issue.AuthorName,
		AuthorAvatar:     issue.AuthorAvatar,
		IsAnonymous:      issue.IsAnonymous,
		AIAnalysis:       issue.AIAnalysis,
		Attachments:      issue.Attachments,
		Comments:         issue.Comments,
		SupportedBy:      issue.SupportedBy,
		FlaggedBy:        issue.FlaggedBy,
		Votes:            issue.Votes,
		CreatedAt:        issue.CreatedAt.UTC(),
		UpdatedAt:        issue.UpdatedAt.UTC(),
	}
}

func (d issueDocument) issue() domain.Issue {
	issue := domain.Issue{
		ID:               d.ID,
		Title:            d.Title,
		Description:      d.Description,
		Category:         domain.Category(d.Category),
		Severity:         domain.Severity(d.Severity),
		Status:           domain.IssueStatus(d.Status),
		ModerationStatus: domain.ModerationStatus(d.ModerationStatus),
		Location:         d.Location,
		AuthorID:         d.AuthorID,
		AuthorName:       d.AuthorName,
		AuthorAvatar:     d.AuthorAvatar,
		IsAnonymous:      d.IsAnonymous,
		AIAnalysis:       d.AIAnalysis,
		Attachments:      d.Attachments,
		Comments:         d.Comments,
		SupportedBy:      d.SupportedBy,
		FlaggedBy:        d.FlaggedBy,
		Votes:            d.Votes,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if issue.ModerationStatus == "" {
		issue.ModerationStatus = domain.ModerationApproved
	}
	return issue.Clone()
}

// MongoIssueRepository is the document-store Persistence Gateway.
type MongoIssueRepository struct {
	coll *mongo.Collection
}

func NewMongoIssueRepository(db *mongo.Database) *MongoIssueRepository {
	return &MongoIssueRepository{coll: db.Collection(database.IssueCollection)}
}

func (r *MongoIssueRepository) List(ctx context.Context) ([]domain.Issue, error) {
	ctx, span := tracer.Start(ctx, "Issue.MongoRepository.List")
	defer span.End()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "find issues")
	}
	defer cursor.Close(ctx)

	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "decode issues")
	}

	issues := make([]domain.Issue, 0, len(docs))
	for _, doc := range docs {
		issues = append(issues, doc.issue())
	}
	return issues, nil
}

func (r *MongoIssueRepository) Create(ctx context.Context, issue domain.Issue) error {
	ctx, span := tracer.Start(ctx, "Issue.MongoRepository.Create")
	defer span.End()

	_, err := r.coll.InsertOne(ctx, newIssueDocument(issue))
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "insert issue")
	}
	return nil
}

func (r *MongoIssueRepository) Update(ctx context.Context, issue domain.Issue) error {
	ctx, span := tracer.Start(ctx, "Issue.MongoRepository.Update")
	defer span.End()

	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": issue.ID},
		newIssueDocument(issue),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "replace issue")
	}
	return nil
}

func (r *MongoIssueRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Issue.MongoRepository.Delete")
	defer span.End()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "delete issue")
	}
	if result.DeletedCount == 0 {
		return domain.NotFoundError{Resource: "issue"}
	}
	return nil
}
