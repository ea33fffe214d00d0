package fridge

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltHistory", func() {
	var (
		tmpDir  string
		dbPath  string
		history *BoltHistory
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "history.db")
		var err error
		history, err = NewBoltHistory(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if history != nil {
			history.Close()
		}
	})

	Describe("SaveEntry", func() {
		var (
			entry *HistoryEntry
			err   error
		)

		BeforeEach(func() {
			entry = &HistoryEntry{
				ID:        "entry-1",
				User:      "alice",
				Action:    ActionScan,
				Detail:    "merged 4 items from receipt abc_receipt.png",
				CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = history.SaveEntry(entry)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should make the entry listable", func() {
				entries, listErr := history.ListEntries("alice")
				Expect(listErr).NotTo(HaveOccurred())
				Expect(entries).To(HaveLen(1))
				Expect(entries[0].ID).To(Equal("entry-1"))
				Expect(entries[0].Action).To(Equal(ActionScan))
			})
		})
	})

	Describe("ListEntries", func() {
		var (
			entries []*HistoryEntry
			err     error
		)

		JustBeforeEach(func() {
			entries, err = history.ListEntries("alice")
		})

		When("entries exist for several users", func() {
			BeforeEach(func() {
				base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
				Expect(history.SaveEntry(&HistoryEntry{
					ID: "a1", User: "alice", Action: ActionAdd, CreatedAt: base,
				})).To(Succeed())
				Expect(history.SaveEntry(&HistoryEntry{
					ID: "a2", User: "alice", Action: ActionCook, CreatedAt: base.Add(time.Hour),
				})).To(Succeed())
				Expect(history.SaveEntry(&HistoryEntry{
					ID: "b1", User: "bob", Action: ActionClear, CreatedAt: base,
				})).To(Succeed())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should only return the requested user's entries", func() {
				Expect(entries).To(HaveLen(2))
			})

			It("should order entries newest first", func() {
				Expect(entries[0].ID).To(Equal("a2"))
				Expect(entries[1].ID).To(Equal("a1"))
			})
		})

		When("no entries exist", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an empty list", func() {
				Expect(entries).To(BeEmpty())
			})
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			Expect(history.Close()).NotTo(HaveOccurred())
			history = nil
		})
	})
})
