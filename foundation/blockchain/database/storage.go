package database

// Storage interface represents the behavior required to be implemented by any
// package providing support for journaling and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(index uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// ReadAll walks the storage from genesis and returns every block in order.
func ReadAll(s Storage) ([]Block, error) {
	var blocks []Block

	iter := s.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}
