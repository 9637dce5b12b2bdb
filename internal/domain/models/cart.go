package models

import "github.com/shopspring/decimal"

// CartLine - строка корзины. Имя и цена фиксируются в момент добавления товара
type CartLine struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Qty       int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart живет только в сессии пользователя, в БД не сохраняется
type Cart struct {
	Lines []CartLine
}

// MaxLineQty - предел количества одного товара в корзине
const MaxLineQty = 10000

// Add увеличивает количество существующей строки или добавляет новую со снимком цены,
// возвращает общее количество единиц в корзине. Если строка вышла бы за 1..MaxLineQty,
// корзина не меняется и возвращается false.
func (c *Cart) Add(p *Product, qty int) (int, bool) {
	if qty <= 0 || qty > MaxLineQty {
		return c.Count(), false
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			if c.Lines[i].Qty > MaxLineQty-qty {
				return c.Count(), false
			}
			c.Lines[i].Qty += qty
			return c.Count(), true
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Qty:       qty,
	})
	return c.Count(), true
}

// Remove удаляет строку товара; отсутствующий товар не является ошибкой
func (c *Cart) Remove(productID int64) {
	lines := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	c.Lines = lines
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Qty
	}
	return n
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
