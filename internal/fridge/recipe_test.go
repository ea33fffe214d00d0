package fridge

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Recipe", func() {
	var f *Fridge

	BeforeEach(func() {
		f = New("alice")
	})

	Describe("CanCook", func() {
		BeforeEach(func() {
			f.AddItem("eggs", 3)
			f.AddItem("fresh whole milk", 1)
			f.AddItem("flour", 0.5)
		})

		When("every ingredient matches an inventory key", func() {
			It("should return true", func() {
				recipe := Recipe{
					Name:        "Pancakes",
					Ingredients: []string{"egg", "milk", "flour"},
				}
				Expect(f.CanCook(recipe)).To(BeTrue())
			})
		})

		When("an ingredient has no match", func() {
			It("should return false", func() {
				recipe := Recipe{
					Name:        "Pancakes",
					Ingredients: []string{"egg", "milk", "butter"},
				}
				Expect(f.CanCook(recipe)).To(BeFalse())
			})
		})

		When("an ingredient name contains the inventory key", func() {
			It("should match in that direction too", func() {
				recipe := Recipe{
					Name:        "Omelette",
					Ingredients: []string{"large free-range eggs"},
				}
				Expect(f.CanCook(recipe)).To(BeTrue())
			})
		})

		When("the only match has zero quantity left", func() {
			BeforeEach(func() {
				f.Inventory["flour"] = 0
			})

			It("should not count it as present", func() {
				recipe := Recipe{
					Name:        "Bread",
					Ingredients: []string{"flour"},
				}
				Expect(f.CanCook(recipe)).To(BeFalse())
			})
		})

		When("the recipe has no ingredients", func() {
			It("should return true", func() {
				Expect(f.CanCook(Recipe{Name: "Glass of water"})).To(BeTrue())
			})
		})
	})

	Describe("DeductRecipe", func() {
		When("every ingredient matches", func() {
			BeforeEach(func() {
				f.AddItem("egg", 3)
				f.AddItem("milk", 1)
			})

			It("should remove one unit per ingredient occurrence", func() {
				recipe := Recipe{
					Name:        "Double omelette",
					Ingredients: []string{"egg", "egg", "milk"},
				}
				Expect(f.DeductRecipe(recipe)).To(BeTrue())
				Expect(f.Inventory).To(Equal(map[string]float64{"egg": 1}))
			})

			It("should delete a key that is used up", func() {
				recipe := Recipe{
					Name:        "Milk only",
					Ingredients: []string{"milk"},
				}
				Expect(f.DeductRecipe(recipe)).To(BeTrue())
				Expect(f.Inventory).NotTo(HaveKey("milk"))
			})
		})

		When("an ingredient is missing", func() {
			BeforeEach(func() {
				f.AddItem("egg", 3)
			})

			It("should return false and change nothing", func() {
				recipe := Recipe{
					Name:        "Pancakes",
					Ingredients: []string{"egg", "milk"},
				}
				Expect(f.DeductRecipe(recipe)).To(BeFalse())
				Expect(f.Inventory).To(Equal(map[string]float64{"egg": 3}))
			})
		})

		When("several inventory keys match the same ingredient", func() {
			BeforeEach(func() {
				f.AddItem("oat milk", 1)
				f.AddItem("whole milk", 1)
			})

			It("should deduct from the lexicographically first match", func() {
				recipe := Recipe{
					Name:        "Porridge",
					Ingredients: []string{"milk"},
				}
				Expect(f.DeductRecipe(recipe)).To(BeTrue())
				Expect(f.Inventory).To(Equal(map[string]float64{"whole milk": 1}))
			})
		})
	})
})
