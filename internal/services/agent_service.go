// File: internal/services/agent_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	pineconeSDK "github.com/pinecone-io/go-pinecone/v4/pinecone"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/repository/message"
	"github.com/huddlehq/huddle/internal/services/core"
)

const defaultSearchTopK = 10

// SearchHit is one semantic search result: the message plus its
// similarity score.
type SearchHit struct {
	Message domain.Message `json:"message"`
	Score   float32        `json:"score"`
}

// ExpertCandidate aggregates how often an author appears among the
// messages most similar to a topic.
type ExpertCandidate struct {
	UserID   uint    `json:"user_id"`
	Mentions int     `json:"mentions"`
	TopScore float32 `json:"top_score"`
}

// AgentService hosts the AI agents: semantic message search, expert
// finding and meeting scheduling. All of them forward the heavy
// lifting to the LLM and vector-store collaborators.
type AgentService struct {
	aiService     *AIService
	vectorService *VectorService
	messageRepo   message.MessageRepository
	logger        Logger
}

func NewAgentService(
	aiService *AIService,
	vectorService *VectorService,
	messageRepo message.MessageRepository,
	logger Logger,
) (*AgentService, error) {
	if aiService == nil {
		return nil, core.NewInvalidArgumentError("constructor", "AI service is required")
	}
	if vectorService == nil {
		return nil, core.NewInvalidArgumentError("constructor", "vector service is required")
	}
	if messageRepo == nil {
		return nil, core.NewInvalidArgumentError("constructor", "message repository is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &AgentService{
		aiService:     aiService,
		vectorService: vectorService,
		messageRepo:   messageRepo,
		logger:        logger,
	}, nil
}

// IndexMessage embeds a message and upserts it into the vector store.
// Called from the event forwarder, so failures are logged by the
// caller rather than failing the originating write.
func (s *AgentService) IndexMessage(ctx context.Context, msg *domain.Message) error {
	const op = "index_message"

	if msg == nil || msg.ID == 0 {
		return core.NewInvalidArgumentError(op, "message is required")
	}

	embedding, err := s.aiService.CreateEmbedding(ctx, msg.Content)
	if err != nil {
		return core.NewUnavailableError(op, "could not embed message", err)
	}

	metadata := map[string]interface{}{
		"message_id": float64(msg.ID),
		"channel_id": float64(msg.ChannelID),
		"author_id":  float64(msg.AuthorID),
	}
	id := vectorID(msg.ID)
	if err := s.vectorService.UpsertVector(ctx, id, embedding, metadata); err != nil {
		return core.NewUnavailableError(op, "could not index message", err)
	}

	s.logger.Debug("message indexed", "message_id", msg.ID, "channel_id", msg.ChannelID)
	return nil
}

// RemoveFromIndex drops a deleted message's vector.
func (s *AgentService) RemoveFromIndex(ctx context.Context, messageID uint) error {
	const op = "remove_from_index"

	if messageID == 0 {
		return core.NewInvalidArgumentError(op, "message ID is required")
	}
	if err := s.vectorService.DeleteVector(ctx, vectorID(messageID)); err != nil {
		return core.NewUnavailableError(op, "could not remove message from index", err)
	}
	return nil
}

// SemanticSearch finds the messages most similar to the query within
// one channel. Deleted messages and unresolvable hits are dropped.
func (s *AgentService) SemanticSearch(ctx context.Context, channelID uint, query string, topK int) ([]SearchHit, error) {
	const op = "semantic_search"

	if strings.TrimSpace(query) == "" {
		return nil, core.NewInvalidArgumentError(op, "query cannot be empty")
	}
	if topK <= 0 || topK > 50 {
		topK = defaultSearchTopK
	}

	embedding, err := s.aiService.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not embed query", err)
	}

	var filter map[string]interface{}
	if channelID != 0 {
		filter = map[string]interface{}{"channel_id": float64(channelID)}
	}
	matches, err := s.vectorService.QuerySimilar(ctx, embedding, topK, filter)
	if err != nil {
		return nil, core.NewUnavailableError(op, "vector search failed", err)
	}

	hits := make([]SearchHit, 0, len(matches))
	for _, match := range matches {
		messageID, ok := matchMessageID(match)
		if !ok {
			continue
		}
		msg, err := s.messageRepo.FindByID(ctx, messageID)
		if err != nil || msg.IsDeleted {
			// Stale index entry; skip the row, keep the rest.
			continue
		}
		hits = append(hits, SearchHit{Message: *msg, Score: match.Score})
	}
	return hits, nil
}

// FindExperts ranks users by how often their messages surface among
// the topic's nearest neighbors.
func (s *AgentService) FindExperts(ctx context.Context, topic string, topK int) ([]ExpertCandidate, error) {
	const op = "find_experts"

	if strings.TrimSpace(topic) == "" {
		return nil, core.NewInvalidArgumentError(op, "topic cannot be empty")
	}
	if topK <= 0 || topK > 50 {
		topK = 25
	}

	embedding, err := s.aiService.CreateEmbedding(ctx, topic)
	if err != nil {
		return nil, core.NewUnavailableError(op, "could not embed topic", err)
	}
	matches, err := s.vectorService.QuerySimilar(ctx, embedding, topK, nil)
	if err != nil {
		return nil, core.NewUnavailableError(op, "vector search failed", err)
	}

	byAuthor := make(map[uint]*ExpertCandidate)
	for _, match := range matches {
		authorID, ok := matchAuthorID(match)
		if !ok {
			continue
		}
		entry, found := byAuthor[authorID]
		if !found {
			entry = &ExpertCandidate{UserID: authorID}
			byAuthor[authorID] = entry
		}
		entry.Mentions++
		if match.Score > entry.TopScore {
			entry.TopScore = match.Score
		}
	}

	experts := make([]ExpertCandidate, 0, len(byAuthor))
	for _, e := range byAuthor {
		experts = append(experts, *e)
	}
	sort.Slice(experts, func(i, j int) bool {
		if experts[i].Mentions != experts[j].Mentions {
			return experts[i].Mentions > experts[j].Mentions
		}
		return experts[i].TopScore > experts[j].TopScore
	})
	return experts, nil
}

// SuggestMeetingAgenda summarizes a thread into a proposed meeting
// agenda via the LLM.
func (s *AgentService) SuggestMeetingAgenda(ctx context.Context, parentID uint) (string, error) {
	const op = "suggest_meeting_agenda"

	parent, err := s.messageRepo.FindByID(ctx, parentID)
	if err != nil || parent.IsDeleted {
		return "", core.NewNotFoundError(op, "thread not found")
	}
	replies, err := s.messageRepo.FindThreadReplies(ctx, parentID)
	if err != nil {
		return "", core.NewUnavailableError(op, "could not load thread", err)
	}

	var transcript strings.Builder
	fmt.Fprintf(&transcript, "- user %d: %s\n", parent.AuthorID, parent.Content)
	for _, r := range replies {
		fmt.Fprintf(&transcript, "- user %d: %s\n", r.AuthorID, r.Content)
	}

	prompt := fmt.Sprintf(`You are a meeting scheduling assistant for a team chat.
# Thread
%s
# Instructions
- Propose a short meeting agenda (3-5 bullet points) covering the open questions in the thread.
- Suggest a reasonable meeting duration.
- Reply in plain Markdown, no preamble.
`, transcript.String())

	agenda, err := s.aiService.GetCompletion(ctx, prompt)
	if err != nil {
		return "", core.NewUnavailableError(op, "could not generate agenda", err)
	}
	return agenda, nil
}

// SummarizeChannel condenses the latest top-level messages of a
// channel into a few sentences.
func (s *AgentService) SummarizeChannel(ctx context.Context, channelID uint, limit int) (string, error) {
	const op = "summarize_channel"

	messages, err := s.messageRepo.ListTopLevel(ctx, channelID, limit, 0)
	if err != nil {
		return "", core.NewUnavailableError(op, "could not load channel messages", err)
	}
	if len(messages) == 0 {
		return "", core.NewNotFoundError(op, "no messages to summarize")
	}

	var transcript strings.Builder
	for i := len(messages) - 1; i >= 0; i-- {
		fmt.Fprintf(&transcript, "- user %d: %s\n", messages[i].AuthorID, messages[i].Content)
	}

	prompt := fmt.Sprintf(`You are a channel summarization assistant for a team chat.
# Messages (oldest first)
%s
# Instructions
- Summarize the discussion in at most five sentences.
- Mention unresolved questions separately if there are any.
- Reply in plain Markdown, no preamble.
`, transcript.String())

	summary, err := s.aiService.GetCompletion(ctx, prompt)
	if err != nil {
		return "", core.NewUnavailableError(op, "could not generate summary", err)
	}
	return summary, nil
}

func vectorID(messageID uint) string {
	return "msg-" + strconv.FormatUint(uint64(messageID), 10)
}

func matchMessageID(match *pineconeSDK.ScoredVector) (uint, bool) {
	return metadataID(match, "message_id")
}

func matchAuthorID(match *pineconeSDK.ScoredVector) (uint, bool) {
	return metadataID(match, "author_id")
}

func metadataID(match *pineconeSDK.ScoredVector, key string) (uint, bool) {
	if match == nil || match.Vector == nil || match.Vector.Metadata == nil {
		return 0, false
	}
	field, ok := match.Vector.Metadata.GetFields()[key]
	if !ok {
		return 0, false
	}
	id := uint(field.GetNumberValue())
	if id == 0 {
		return 0, false
	}
	return id, true
}
