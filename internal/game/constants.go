package game

// Values a spawned tile can take. Each is chosen with equal probability.
var SpawnValues = [...]uint32{2, 4}

// InitialTiles is the number of tiles dealt onto a fresh board.
const InitialTiles = 1
