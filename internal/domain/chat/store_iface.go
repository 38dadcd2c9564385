package chat

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, senderID, receiverID, message string) (Message, error)
	Thread(ctx context.Context, userA, userB string, page Page) ([]Message, error)
	MarkRead(ctx context.Context, readerID, counterpartID string) (int64, error)
	UnreadBySender(ctx context.Context, receiverID string) (map[string]int, error)
}
