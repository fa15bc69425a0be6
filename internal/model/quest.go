package model

// TutorialQuestKey is the quest key tracking tutorial progress
const TutorialQuestKey = "tutorial"

// QuestStage is a player's progress through one quest
type QuestStage struct {
	Key   string `json:"key"`
	Stage int    `json:"stage"`
}

// QuestProgress holds every quest stage for a player
type QuestProgress struct {
	Username string       `json:"username"`
	Quests   []QuestStage `json:"quests"`
}

// Stage returns the progress stage for a quest key, if the player has one
func (q *QuestProgress) Stage(key string) (int, bool) {
	for _, quest := range q.Quests {
		if quest.Key == key {
			return quest.Stage, true
		}
	}
	return 0, false
}

// Clone returns a deep copy
func (q *QuestProgress) Clone() *QuestProgress {
	c := &QuestProgress{Username: q.Username, Quests: make([]QuestStage, len(q.Quests))}
	copy(c.Quests, q.Quests)
	return c
}
